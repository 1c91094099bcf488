package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/colbee-backend/api"
	"github.com/rpupo63/colbee-backend/config"
	"github.com/rpupo63/colbee-backend/database"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if logFile := setupLogging(c); logFile != nil {
		defer logFile.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.GetSeconds(c, "STARTUP_TIMEOUT_SECONDS", 30))
	defer cancel()

	store, err := openStore(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		pg, ok := store.(*database.PostgresStore)
		if !ok {
			log.Fatal().Str("store", store.Name()).Msg("column report requires DB_TYPE=postgres")
		}
		if err := pg.LogColumnReports(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	var opts []database.Option
	if config.GetBool(c, "BREAKER_ENABLED", true) {
		opts = append(opts, database.WithBreaker(breakerSettings(c)))
	}
	currentDB := database.New(store, opts...)

	if err := currentDB.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := currentDB.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}

// openStore connects to the backend named by DB_TYPE.
func openStore(ctx context.Context, c map[string]string) (database.Store, error) {
	dbType := strings.ToLower(config.GetString(c, "DB_TYPE", "mongo"))
	log.Info().Str("dbType", dbType).Msg("connecting to database")

	switch dbType {
	case "mongo", "mongodb":
		uri := config.GetString(c, "MONGODB_URI", "")
		if uri == "" {
			return nil, fmt.Errorf("MONGODB_URI is required for DB_TYPE=%s", dbType)
		}
		store, err := database.NewMongoStore(ctx, uri, config.GetString(c, "MONGODB_DATABASE", "colbee"))
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close(ctx)
			return nil, err
		}
		return store, nil
	case "postgres", "supa":
		dsn := config.GetString(c, "POSTGRES_DSN", "")
		if dsn == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for DB_TYPE=%s", dbType)
		}
		return database.NewPostgresStore(dsn, config.GetList(c, "POSTGRES_REPLICA_DSNS")...)
	case "sqlite":
		return database.NewSQLiteStore(config.GetString(c, "SQLITE_PATH", "colbee.db"))
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

func breakerSettings(c map[string]string) database.BreakerSettings {
	s := database.DefaultBreakerSettings()
	s.MaxRequests = uint32(config.GetInt(c, "BREAKER_MAX_REQUESTS", int(s.MaxRequests)))
	s.Interval = config.GetSeconds(c, "BREAKER_INTERVAL_SECONDS", int(s.Interval/time.Second))
	s.Timeout = config.GetSeconds(c, "BREAKER_TIMEOUT_SECONDS", int(s.Timeout/time.Second))
	s.ConsecutiveFailures = uint32(config.GetInt(c, "BREAKER_CONSECUTIVE_FAILURES", int(s.ConsecutiveFailures)))
	return s
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-ch)
}
