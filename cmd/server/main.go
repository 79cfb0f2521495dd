package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/api"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/config"
	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/network"
	"github.com/cbodonnell/replaycipher/pkg/queue"
	"github.com/cbodonnell/replaycipher/pkg/repositories"
	"github.com/cbodonnell/replaycipher/pkg/spectator"
	"github.com/cbodonnell/replaycipher/pkg/version"
	"github.com/cbodonnell/replaycipher/pkg/workers"
)

func main() {
	apiPort := flag.Int("api-port", 9090, "API port to listen on")
	wsPort := flag.Int("ws-port", 8889, "WebSocket port to listen on")
	profilePath := flag.String("profile", "", "Strategy profile used for decoding (optional)")
	sessionTTL := flag.Duration("session-ttl", spectator.DefaultSessionTTL, "Idle time before a live session is dropped")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile := config.Default()
	if *profilePath != "" {
		profile, err = config.Load(*profilePath)
		if err != nil {
			panic(fmt.Sprintf("Failed to load profile: %v", err))
		}
	}

	connStr := os.Getenv("REPLAYCIPHER_DATABASE_URL")
	if connStr == "" {
		connStr = "sqlite://replaycipher.db"
	}
	repository, err := newRepository(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(context.Background())

	selector := cipher.NewSelector(profile.DecoderOptions())
	sessionManager := spectator.NewManager(selector)
	bundleQueue := queue.NewInMemoryQueue(queue.QueueBufferSize)

	spectatorWorker := spectator.NewWorker(spectator.NewWorkerOptions{
		BundleQueue: bundleQueue,
		Manager:     sessionManager,
		SessionTTL:  *sessionTTL,
	})
	go spectatorWorker.Start(ctx)

	saveSessionWorker := workers.NewSaveSessionWorker(workers.NewSaveSessionWorkerOptions{
		Repository: repository,
		Manager:    sessionManager,
	})
	go saveSessionWorker.Start(ctx)

	wsServerOpts := network.NewWSServerOptions{
		Port:        *wsPort,
		BundleQueue: bundleQueue,
	}
	apiServerOpts := api.NewAPIServerOptions{
		Port:       *apiPort,
		Repository: repository,
		Selector:   selector,
		Manager:    sessionManager,
	}
	tlsCertFile := os.Getenv("REPLAYCIPHER_TLS_CERT_FILE")
	tlsKeyFile := os.Getenv("REPLAYCIPHER_TLS_KEY_FILE")
	if tlsCertFile != "" && tlsKeyFile != "" {
		wsServerOpts.TLS = &network.TLSConfig{
			CertFile: tlsCertFile,
			KeyFile:  tlsKeyFile,
		}
		apiServerOpts.TLS = &api.TLSConfig{
			CertFile: tlsCertFile,
			KeyFile:  tlsKeyFile,
		}
	}

	wsServer := network.NewWSServer(wsServerOpts)
	go wsServer.Start(ctx)

	apiServer := api.NewAPIServer(apiServerOpts)
	go apiServer.Start()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
}

// newRepository picks the repository implementation from the URL scheme.
func newRepository(ctx context.Context, connStr string) (repositories.Repository, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		return repositories.NewSQLiteRepository(ctx, u.Host+u.Path)
	case "postgres", "postgresql":
		return repositories.NewPostgresRepository(ctx, u.String())
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}
