package main

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// fetcher is the subset of *kafka.Reader the consume loop uses.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// pusher forwards one event line to Loki.
type pusher interface {
	PushEventJSON(ctx context.Context, rawJSON []byte) error
}

// consume forwards events until ctx is cancelled. An offset is committed only after its
// push returns, so a crash mid-push replays the event rather than losing it. Pushes that
// Loki rejects are logged and committed; retrying them would stall the partition.
func consume(ctx context.Context, r fetcher, p pusher, pushTimeout time.Duration) {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker: kafka fetch error: %v", err)
			continue
		}

		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		err = p.PushEventJSON(pushCtx, msg.Value)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker: loki push failed (partition %d offset %d): %v", msg.Partition, msg.Offset, err)
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker: commit offset %d: %v", msg.Offset, err)
		}
	}
}
