package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tutor-radar/internal/config"
	"github.com/tutor-radar/internal/infrastructure/dispatch"
	"github.com/tutor-radar/internal/infrastructure/dynamo"
	jwtinfra "github.com/tutor-radar/internal/infrastructure/jwt"
	"github.com/tutor-radar/internal/infrastructure/metrics"
	s3infra "github.com/tutor-radar/internal/infrastructure/s3"
	"github.com/tutor-radar/internal/infrastructure/smtp"
	"github.com/tutor-radar/internal/infrastructure/sns"
	transporthttp "github.com/tutor-radar/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Without keys every authenticated route answers 401.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)

	var publisher sns.Publisher
	if p, err := sns.NewPublisher(cfg); err == nil {
		publisher = p
	} else if cfg.CodeNotifier == "sns" {
		log.Fatalf("SNS publisher required by CODE_NOTIFIER=sns: %v", err)
	}

	notifier, err := dispatch.New(cfg.CodeNotifier, smtp.NewMailer(cfg), publisher)
	if err != nil {
		log.Fatalf("code notifier: %v", err)
	}

	deps := &transporthttp.Deps{
		ProfileRepo: dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles),
		TutorRepo:   dynamo.NewTutorRepo(dynamoClient, cfg.DynamoTables.Tutors),
		CodeRepo:    dynamo.NewVerificationCodeRepo(dynamoClient, cfg.DynamoTables.VerificationCodes),
		ObjectStore: s3Store,
		Notifier:    notifier,
		Metrics:     metrics.New(),
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, notifier=%s)", cfg.AppPort, cfg.AppEnv, cfg.CodeNotifier)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
