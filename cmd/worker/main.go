// Worker ships telemetry events (request, auth_denied and otp_delivered) from the
// Kafka topic into Loki, one stream per event class.
//
// Required: KAFKA_BROKERS and LOKI_URL. TELEMETRY_KAFKA_TOPIC and KAFKA_GROUP_ID
// fall back to their config defaults.
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"custom-auth-extension/backend/internal/config"
	"custom-auth-extension/backend/internal/telemetry/loki"
)

const lokiPushTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	brokers := cfg.TelemetryKafkaBrokersList()
	switch {
	case len(brokers) == 0:
		log.Fatal("worker: KAFKA_BROKERS is required")
	case cfg.LokiURL == "":
		log.Fatal("worker: LOKI_URL is required")
	}

	lokiClient, err := loki.NewClient(cfg.LokiURL, &http.Client{Timeout: lokiPushTimeout})
	if err != nil {
		log.Fatalf("worker: %v", err)
	}
	events := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    cfg.TelemetryKafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  500 * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("worker: %s/%s -> %s", cfg.TelemetryKafkaTopic, cfg.KafkaGroupID, cfg.LokiURL)
	consume(ctx, events, lokiClient, lokiPushTimeout)
	if err := events.Close(); err != nil {
		log.Printf("worker: close reader: %v", err)
	}
	log.Println("worker: stopped")
}
