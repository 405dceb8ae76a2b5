package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/iwvelando/arr-forecast/internal/logging"
	"github.com/iwvelando/arr-forecast/internal/server"
	"github.com/iwvelando/arr-forecast/pkg/constants"
	"go.uber.org/zap"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override (e.g., :8080)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := logging.NewLogger(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *address != "" {
		cfg.Address = *address
	}

	handler := server.NewHandler(logger, cfg.UploadSizeBytes(), cfg.CacheCapacity, version)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info(fmt.Sprintf("listening on %s", cfg.Address),
		zap.String("op", "main"),
		zap.String("version", version),
		zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		zap.Int("cacheCapacity", cfg.CacheCapacity),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server terminated",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
