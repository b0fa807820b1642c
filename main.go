package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/config"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/catalog"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/consumer"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/handler"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/jobs"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/middleware"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/notify"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/pricing"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/service"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
	"github.com/Eursukkul/booking-microservice/wizard-service/pkg/database"
	"github.com/Eursukkul/booking-microservice/wizard-service/pkg/logger"
	"github.com/Eursukkul/booking-microservice/wizard-service/pkg/rabbitmq"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer zl.Sync()

	loc := cfg.Location()
	today := func() civil.Date { return civil.DateOf(time.Now().In(loc)) }

	db := database.NewPostgresDB(cfg.DSN(), zl)

	// Repositories
	serviceRepo := repository.NewServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Catalog
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	if cfg.CatalogSeedFile != "" {
		if _, err := service.SeedCatalog(ctx, serviceRepo, catalog.NewFixtureSource(cfg.CatalogSeedFile), zl); err != nil {
			zl.Fatal("failed to seed catalog", zap.Error(err))
		}
	}
	services := catalog.New(serviceRepo, zl.Named("catalog"))
	if err := services.Load(ctx); err != nil {
		zl.Fatal("failed to load catalog", zap.Error(err))
	}
	cancel()

	// Availability
	var availabilitySource availability.Source = service.NewAvailabilityService(bookingRepo, services, cfg.VenueDailyCapacity)
	var cache *availability.RedisCachedSource
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		cache = availability.NewRedisCachedSource(availabilitySource, rdb, cfg.RedisCacheTTL, zl.Named("availability-cache"))
		availabilitySource = cache
	}
	resolver := availability.NewResolver(availabilitySource, zl.Named("availability"))

	// Pricing
	engine := pricing.NewEngine(pricingOptions(cfg, zl)...)

	// Events: nil publisher = skip RabbitMQ
	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			zl.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer p.Close()
		publisher = p

		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.CatalogQueue, 1, rabbitmq.CatalogKeys)
		if err != nil {
			zl.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume("wizard-service")
		if err != nil {
			zl.Fatal("failed to start consuming", zap.Error(err))
		}
		consumer.NewCatalogConsumer(services, zl.Named("consumer")).Start(msgs)
		go func(closed <-chan *amqp.Error) {
			if err, ok := <-closed; ok {
				zl.Error("RabbitMQ connection lost, catalog updates stopped", zap.Error(err))
			}
		}(mqConsumer.Closed())
	}

	// Service
	bookingSvc := service.NewBookingService(service.BookingDeps{
		Bookings:      bookingRepo,
		Services:      serviceRepo,
		Catalog:       services,
		Pricing:       engine,
		Publisher:     publisher,
		Notifier:      notifiers(cfg, zl),
		Logger:        zl.Named("booking"),
		VenueCapacity: cfg.VenueDailyCapacity,
		Location:      loc,
		OnChanged: func(serviceID string, day civil.Date) {
			resolver.InvalidateDate(serviceID, day)
			if cache == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := cache.Invalidate(ctx, serviceID, day.Year, day.Month); err != nil {
				zl.Warn("failed to invalidate availability cache", zap.String("service_id", serviceID), zap.Error(err))
			}
		},
	})

	// Wizard sessions
	sessions := wizard.NewManager(wizard.Dependencies{
		Catalog:           services,
		Calendar:          resolver,
		Months:            resolver,
		Pricing:           engine,
		Gateway:           bookingSvc,
		Location:          loc,
		DefaultGuestCount: cfg.DefaultGuestCount,
		Logger:            zl.Named("wizard"),
	})

	// Jobs
	scheduler, err := jobs.NewScheduler(jobs.Config{
		SessionIdleTTL:     cfg.SessionIdleTTL,
		SessionSweepSpec:   cfg.SessionSweepSpec,
		CatalogRefreshSpec: cfg.CatalogRefreshSpec,
	}, sessions, services, zl.Named("jobs"))
	if err != nil {
		zl.Fatal("failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			zl.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	if cfg.RateLimitPerSecond > 0 {
		e.Use(echoMw.RateLimiter(echoMw.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitPerSecond))))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "wizard-service"})
	})

	handler.NewCatalogHandler(services, engine.HourlyRate()).RegisterRoutes(e)
	handler.NewAvailabilityHandler(resolver, today).RegisterRoutes(e)
	handler.NewWizardHandler(sessions, resolver, zl.Named("http")).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)

	go func() {
		zl.Info("Wizard Service starting", zap.String("port", cfg.ServerPort))
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	scheduler.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}

func pricingOptions(cfg *config.Config, zl *zap.Logger) []pricing.Option {
	var opts []pricing.Option
	if cfg.HourlyRate != "" {
		hourly, err := decimal.NewFromString(cfg.HourlyRate)
		if err != nil {
			zl.Fatal("invalid HOURLY_RATE", zap.String("value", cfg.HourlyRate), zap.Error(err))
		}
		opts = append(opts, pricing.WithHourlyRate(hourly))
	}
	if cfg.TaxRate != "" {
		tax, err := decimal.NewFromString(cfg.TaxRate)
		if err != nil {
			zl.Fatal("invalid TAX_RATE", zap.String("value", cfg.TaxRate), zap.Error(err))
		}
		opts = append(opts, pricing.WithTaxRate(tax))
	}
	return opts
}

// notifiers builds the confirmation channels that have credentials.
func notifiers(cfg *config.Config, zl *zap.Logger) notify.Notifier {
	var multi notify.Multi
	if cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail != "" {
		multi = append(multi, notify.NewEmailNotifier(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, zl.Named("email")))
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		multi = append(multi, notify.NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, zl.Named("sms")))
	}
	if len(multi) == 0 {
		return notify.Noop{}
	}
	return multi
}
