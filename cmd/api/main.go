package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/medbook/appointment-api/internal/config"
	"github.com/medbook/appointment-api/internal/email"
	appointmentHandler "github.com/medbook/appointment-api/internal/handler/appointment"
	doctorHandler "github.com/medbook/appointment-api/internal/handler/doctor"
	healthHandler "github.com/medbook/appointment-api/internal/handler/health"
	patientHandler "github.com/medbook/appointment-api/internal/handler/patient"
	"github.com/medbook/appointment-api/internal/middleware"
	"github.com/medbook/appointment-api/internal/repository/postgres"
	"github.com/medbook/appointment-api/internal/router"
	appointmentService "github.com/medbook/appointment-api/internal/service/appointment"
	doctorService "github.com/medbook/appointment-api/internal/service/doctor"
	notificationService "github.com/medbook/appointment-api/internal/service/notification"
	patientService "github.com/medbook/appointment-api/internal/service/patient"
	"github.com/medbook/appointment-api/pkg/auth"
	"github.com/medbook/appointment-api/pkg/logger"
	redisBroker "github.com/medbook/appointment-api/pkg/messaging/redis"
	"github.com/medbook/appointment-api/pkg/metrics"
	"github.com/medbook/appointment-api/pkg/security"
	"github.com/medbook/appointment-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	l := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	encryptor, err := security.NewAESEncryptor(cfg.Encryption.ToKeyConfig())
	if err != nil {
		l.Fatal(err, "failed to initialize field encryption")
	}

	broker, err := redisBroker.NewBroker(cfg.Redis.ToBrokerConfig(), l.ZL())
	if err != nil {
		l.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	v, err := validator.New()
	if err != nil {
		l.Fatal(err, "failed to initialize validator")
	}

	m := metrics.NewMetrics("appointment_api")

	appointmentRepo := postgres.NewAppointmentRepository(db, m)
	patientRepo := postgres.NewPatientRepository(db, encryptor)
	doctorRepo := postgres.NewDoctorRepository(db, encryptor)
	notificationRepo := postgres.NewNotificationRepository(db)

	emailSvc := email.NewSMTPService(cfg.SMTP.ToEmailConfig())
	notifierSvc := notificationService.NewService(notificationRepo, emailSvc, broker, m, l)
	patientSvc := patientService.NewService(patientRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientSvc, doctorSvc, notifierSvc, m, l)
	appointmentSvc.SetHorizonDays(cfg.Booking.HorizonDays)

	authMiddleware := middleware.NewAuthMiddleware(auth.NewTokenVerifier(cfg.JWT.Secret))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db),
		appointmentHandler.NewHandler(appointmentSvc, v),
		patientHandler.NewHandler(patientSvc, v),
		doctorHandler.NewHandler(doctorSvc, v),
		l,
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			CORSConfig:       corsConfig,
			MetricsPrefix:    "appointment_api",
			MetricsEnabled:   cfg.Monitoring.PrometheusEnabled,
			MetricsPath:      cfg.Monitoring.MetricsPath,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		l.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Fatal(err, "server forced to shutdown")
	}

	l.Info("server exited")
}
