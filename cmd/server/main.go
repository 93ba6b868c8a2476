package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/himanishpuri/spectrodft/pkg/logger"
	"github.com/himanishpuri/spectrodft/pkg/spectrodft"
)

var (
	port           int
	dbPath         string
	workers        int
	allowedOrigins string
	logRequests    bool
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SPECTRO_DB_PATH", "spectrodft.sqlite3"), "Path to the SQLite run catalog")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "Frame workers per request")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.BoolVar(&logRequests, "log-requests", false, "Log every request")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(list string) []string {
	if list == "*" {
		return []string{"*"}
	}
	origins := strings.Split(list, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	service, err := spectrodft.NewService(
		spectrodft.WithDBPath(dbPath),
		spectrodft.WithWorkers(workers),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		Workers:        workers,
		AllowedOrigins: parseOrigins(allowedOrigins),
		LogRequests:    logRequests,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := NewServer(service, config)
	if err := server.Start(ctx); err != nil {
		log.Errorf("Server failed: %v", err)
		os.Exit(1)
	}
}
