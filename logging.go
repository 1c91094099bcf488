package main

import (
	"os"
	"time"

	"github.com/rpupo63/colbee-backend/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging configures the global zerolog logger. Output goes to the
// console and, when LOG_FILE is set, to a rotating file as JSON. The file
// logger is nil when no file is configured.
func setupLogging(c map[string]string) *lumberjack.Logger {
	level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	path := config.GetString(c, "LOG_FILE", "")
	if path == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nil
	}

	logFile := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.GetInt(c, "LOG_MAX_SIZE_MB", 10),
		MaxBackups: config.GetInt(c, "LOG_MAX_BACKUPS", 3),
		MaxAge:     config.GetInt(c, "LOG_MAX_AGE_DAYS", 28),
		Compress:   true,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, logFile)).With().Timestamp().Logger()
	log.Info().Str("file", path).Msg("logging to file")
	return logFile
}
