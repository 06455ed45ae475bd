// Server runs the custom authentication extension HTTP API.
// Optional: DATABASE_URL (audit store), KAFKA_BROKERS (telemetry), OTEL_EXPORTER_OTLP_ENDPOINT, HEALTH_GRPC_ADDR.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"custom-auth-extension/backend/internal/audit"
	auditrepo "custom-auth-extension/backend/internal/audit/repository"
	"custom-auth-extension/backend/internal/config"
	"custom-auth-extension/backend/internal/db"
	"custom-auth-extension/backend/internal/delivery/sms"
	"custom-auth-extension/backend/internal/devotp"
	devotphandler "custom-auth-extension/backend/internal/devotp/handler"
	exthandler "custom-auth-extension/backend/internal/extension/handler"
	"custom-auth-extension/backend/internal/extension/service"
	healthhandler "custom-auth-extension/backend/internal/health/handler"
	"custom-auth-extension/backend/internal/security"
	"custom-auth-extension/backend/internal/server"
	"custom-auth-extension/backend/internal/server/interceptors"
	"custom-auth-extension/backend/internal/telemetry"
	telemetryotel "custom-auth-extension/backend/internal/telemetry/otel"
	"custom-auth-extension/backend/internal/telemetry/producer"
)

const (
	shutdownTimeout = 10 * time.Second
	serviceVersion  = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:       cfg.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: serviceVersion,
		Insecure:       cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	instruments, err := telemetryotel.NewInstruments(providers.MeterProvider.Meter("custom-auth-extension/backend"))
	if err != nil {
		log.Fatalf("otel: instruments: %v", err)
	}

	var emitters telemetry.Fanout
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		log.Printf("telemetry: producing to Kafka topic %s", cfg.TelemetryKafkaTopic)
		emitters = append(emitters, kafkaProducer)
	}
	if cfg.OTLPEndpoint != "" {
		emitters = append(emitters, telemetryotel.NewEventEmitter(providers.LoggerProvider))
	}
	var emitter telemetry.EventEmitter
	if len(emitters) > 0 {
		emitter = emitters
	}

	var (
		sqlDB  *sql.DB
		pinger healthhandler.Pinger
		repo   auditrepo.Repository = auditrepo.NewConsoleRepository(nil)
	)
	if cfg.DatabaseURL != "" {
		sqlDB, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		repo = auditrepo.NewPostgresRepository(sqlDB)
		pinger = sqlDB
		log.Println("audit: writing records to Postgres")
	} else {
		log.Println("audit: DATABASE_URL not set, writing records to the console")
	}

	notifiers := []service.OtpNotifier{audit.NewLogger(repo, interceptors.GetClientIP)}
	var devOTP http.Handler
	if cfg.DevOTPEnabled {
		store := devotp.NewMemoryStore(devotp.DefaultTTL)
		notifiers = append(notifiers, store)
		devOTP = devotphandler.NewServer(store)
		log.Println("devotp: GET /dev/otp enabled (development only)")
	}
	if cfg.SMSAPIKey != "" {
		notifiers = append(notifiers, sms.NewClient(cfg.SMSAPIKey, cfg.SMSBaseURL, cfg.SMSSender))
		log.Println("otp: SMS delivery enabled for phone identifiers")
	}
	if emitter != nil {
		notifiers = append(notifiers, telemetry.OtpEvents{Emitter: emitter})
	}

	svc := service.New(service.Options{
		StartDelay:  cfg.SimulateDelay(),
		TokenClaims: cfg.TokenClaimsEnabled,
		APIVersion:  cfg.APIVersion,
		Notifiers:   notifiers,
		OnNotifyFailure: func(ctx context.Context, err error) {
			instruments.OtpNotifyFailures.Add(ctx, 1)
		},
	})

	bearer := cfg.BearerPolicy()
	legacy := cfg.LegacyPolicy()
	log.Printf("auth: bearer gate enabled=%t audience=%q azp=%q", bearer.Enabled, bearer.ExpectedAudience, bearer.ExpectedAuthorizedParty)
	log.Printf("auth: legacy header gate enabled=%t header=%q", legacy.Enabled, legacy.Header)

	health := healthhandler.NewServer(pinger)
	router := server.NewRouter(server.Deps{
		Extension:   exthandler.NewServer(svc),
		Bearer:      security.NewBearerAuthorizer(bearer),
		Legacy:      security.NewHeaderAuthorizer(legacy),
		Health:      health,
		DevOTP:      devOTP,
		Emitter:     emitter,
		Instruments: instruments,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30*time.Second + cfg.SimulateDelay(),
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.HealthGRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.HealthGRPCAddr)
		if err != nil {
			log.Fatalf("health: listen: %v", err)
		}
		grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
		healthhandler.NewGRPCServer(health).Register(grpcServer)
		go func() {
			log.Printf("gRPC health server listening on %s", cfg.HealthGRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				log.Fatalf("health: serve: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	drainCtx, drainCancel := context.WithTimeout(ctx, telemetry.ShutdownDrainDuration)
	defer drainCancel()
	if err := telemetry.Drain(drainCtx); err != nil {
		log.Printf("shutdown: background work still running: %v", err)
	}
	if err := kafkaProducer.Close(); err != nil {
		log.Printf("shutdown: kafka producer: %v", err)
	}
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: otel: %v", err)
	}
	log.Println("HTTP server stopped")
}
