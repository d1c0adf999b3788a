package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-user-service/internal/handlers"
	"github.com/sbilibin2017/gw-user-service/internal/health"
	"github.com/sbilibin2017/gw-user-service/internal/jwt"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/middlewares"
	"github.com/sbilibin2017/gw-user-service/internal/repositories"
	"github.com/sbilibin2017/gw-user-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sbilibin2017/gw-user-service/docs"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds everything read from the environment.
type config struct {
	AppHost      string
	AppPort      string
	LogLevel     string
	LogEncoding  string
	AuthRequired bool
	CORSOrigins  []string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecretKey string
	JWTExp       time.Duration

	PasswordHashCost int
	HealthGRPCPort   string
}

// @title gw-user-service API
// @version 1.0.0
// @description User registry: registration, login and soft-deletable user records
// @host localhost:8080
// @BasePath /api/users
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the application configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.LogEncoding = getEnv("APP_LOG_ENCODING", "json")
	if cfg.AuthRequired, err = strconv.ParseBool(getEnv("APP_AUTH_REQUIRED", "false")); err != nil {
		return cfg, fmt.Errorf("APP_AUTH_REQUIRED: %w", err)
	}
	cfg.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}

	// Login throttling
	if cfg.LoginMaxAttempts, err = getInt("LOGIN_MAX_ATTEMPTS", "0"); err != nil {
		return
	}
	windowSecond, err := getInt("LOGIN_ATTEMPT_WINDOW_SECOND", "900")
	if err != nil {
		return
	}
	cfg.LoginAttemptWindow = time.Duration(windowSecond) * time.Second

	// Kafka config
	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "user-events")

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	expSecond, err := getInt("JWT_EXP_SECOND", "3600")
	if err != nil {
		return
	}
	cfg.JWTExp = time.Duration(expSecond) * time.Second

	if cfg.PasswordHashCost, err = getInt("PASSWORD_HASH_COST", "10"); err != nil {
		return
	}
	cfg.HealthGRPCPort = getEnv("HEALTH_GRPC_PORT", "50051")

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// newRouter mounts the user API, swagger UI and middleware chain.
func newRouter(cfg config, db *sqlx.DB, svc *services.UserService, tokens *jwt.JWT) http.Handler {
	txMiddleware := middlewares.TxMiddleware(db)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))

	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.With(txMiddleware).Post("/register", handlers.NewRegisterHandler(svc))
		r.Post("/login", handlers.NewLoginHandler(svc, tokens))

		r.Group(func(r chi.Router) {
			if cfg.AuthRequired {
				r.Use(middlewares.AuthMiddleware(tokens))
			}
			r.Get("/", handlers.NewListUsersHandler(svc))
			r.Get("/{id}", handlers.NewGetUserHandler(svc))
			r.With(txMiddleware).Put("/{id}", handlers.NewUpdateUserHandler(svc))
			r.With(txMiddleware).Delete("/{id}", handlers.NewDeleteUserHandler(svc))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	return r
}

// run initializes the logger, database, Redis, Kafka, health and HTTP servers.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.LogLevel, cfg.LogEncoding); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infow("Logger initialized", "level", cfg.LogLevel, "encoding", cfg.LogEncoding)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)

	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	hasher := services.NewBcryptHasher(cfg.PasswordHashCost)
	opts := []services.Option{services.WithCommitHook(middlewares.AfterCommit)}

	// Connect to Redis
	if cfg.LoginMaxAttempts > 0 {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis connection error: %w", err)
		}
		attempts := repositories.NewLoginAttemptCacheRepository(rdb, cfg.LoginAttemptWindow)
		opts = append(opts, services.WithLoginAttempts(attempts, int64(cfg.LoginMaxAttempts)))
	}

	// Kafka writer
	if len(cfg.KafkaBrokers) > 0 {
		kw := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
		defer kw.Close()
		opts = append(opts, services.WithKafkaWriter(kw))
		logger.Log.Infow("Kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	tokens := jwt.New(jwt.WithSecretKey(cfg.JWTSecretKey), jwt.WithExpiration(cfg.JWTExp))

	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)
	userService := services.NewUserService(userReadRepo, userWriteRepo, hasher, opts...)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: newRouter(cfg, db, userService, tokens),
	}

	// gRPC health
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.AppHost, cfg.HealthGRPCPort))
	if err != nil {
		return fmt.Errorf("health listener failed: %w", err)
	}
	grpcServer := grpc.NewServer()
	checker := health.NewChecker(db, 10*time.Second)
	checker.Register(grpcServer)

	// Graceful shutdown
	errChan := make(chan error, 2)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go checker.Run(ctxShutdown)

	go func() {
		logger.Log.Infow("gRPC health server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC health server failed: %w", err)
		}
	}()

	go func() {
		logger.Log.Infow("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping servers...")
	case serveErr = <-errChan:
		logger.Log.Errorw("server failed, shutting down", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	logger.Log.Info("Servers stopped gracefully")
	return serveErr
}
