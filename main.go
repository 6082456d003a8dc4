package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"campus-ticketing/internal/auth"
	"campus-ticketing/internal/config"
	"campus-ticketing/internal/database/migrations"
	eventdb "campus-ticketing/internal/events/db"
	"campus-ticketing/internal/events/event_api"
	events "campus-ticketing/internal/events/service"
	"campus-ticketing/internal/inventory"
	"campus-ticketing/internal/kafka"
	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	ticketdb "campus-ticketing/internal/tickets/db"
	"campus-ticketing/internal/tickets/qr"
	tickets "campus-ticketing/internal/tickets/service"
	"campus-ticketing/internal/tickets/ticket_api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func connectPostgres(cfg *config.Config, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Warn("REDIS", "Redis disabled; purchases rely on the database guard alone")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	return client
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.LogAPI(r.Method, r.URL.Path, strconv.Itoa(ww.Status()), time.Since(start).String())
		})
	}
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Campus Ticketing service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()
	bunDB := connectPostgres(cfg, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.Options{MigrationsDir: cfg.Database.MigrationsDir})
		if err := runner.MigrateUp(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		if version, err := runner.Version(); err == nil {
			log.Info("DATABASE", fmt.Sprintf("Schema at version %d", version))
		}
		// The runner shares the server's *sql.DB; closing it here would
		// close that pool, so it is left to process exit.
	}

	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, log, cfg.Kafka.MockMode)
		defer producer.Close()
		if !cfg.Kafka.MockMode {
			if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.Topics); err != nil {
				log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
			}
		}
		log.Info("KAFKA", "Kafka producer initialized")
	} else {
		log.Warn("KAFKA", "Kafka disabled; domain events will not be published")
	}

	qrGen := qr.NewGenerator(cfg.QR.Secret)

	eventStore := &eventdb.DB{Bun: bunDB}
	ticketStore := &ticketdb.DB{Bun: bunDB}
	userStore := &auth.DB{Bun: bunDB}

	var eventPublisher events.KafkaPublisher
	var ticketPublisher inventory.Publisher
	if producer != nil {
		eventPublisher = producer
		ticketPublisher = producer
	}

	eventService := events.NewEventService(eventStore, eventPublisher, log)
	ticketService := tickets.NewTicketService(ticketStore, qrGen)

	var lock inventory.Locker
	if redisClient != nil {
		lock = inventory.NewEventLock(redisClient)
	}
	inventoryService := inventory.NewService(eventStore, ticketStore, lock, ticketPublisher, qrGen, log)

	authService := auth.NewService(userStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authHandler := &auth.Handler{Service: authService, Logger: log}
	eventHandler := event_api.NewHandler(eventService, log)
	ticketHandler := ticket_api.NewHandler(ticketService, inventoryService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.ListEvents)
			r.Get("/{eventID}", eventHandler.GetEvent)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(cfg.Auth.JWTSecret))
				r.Post("/", eventHandler.CreateEvent)
				r.Put("/{eventID}", eventHandler.UpdateEvent)
				r.Delete("/{eventID}", eventHandler.DeleteEvent)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(cfg.Auth.JWTSecret))
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Put("/{eventID}/approve", eventHandler.ApproveEvent)
				r.Put("/{eventID}/reject", eventHandler.RejectEvent)
				r.Get("/{eventID}/approvals", eventHandler.ApprovalHistory)
			})
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.JWTSecret))
			r.Post("/", ticketHandler.PurchaseTicket)
			r.Get("/user/{userID}", ticketHandler.ListTicketsByUser)
			r.Get("/{ticketID}", ticketHandler.ViewTicket)
			r.Put("/{ticketID}/use", ticketHandler.UseTicket)
			r.Post("/checkin", ticketHandler.Checkin)
		})
	})
	log.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", "Campus Ticketing service running on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Service shutdown complete")
	}
}
