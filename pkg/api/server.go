package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/replaycipher/pkg/api/handlers"
	"github.com/cbodonnell/replaycipher/pkg/api/middleware"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/cbodonnell/replaycipher/pkg/repositories"
	"github.com/cbodonnell/replaycipher/pkg/spectator"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
	logger *log.Logger
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port       int
	TLS        *TLSConfig
	Repository repositories.Repository
	Selector   *cipher.Selector
	Manager    *spectator.Manager
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
		logger: log.Default().With("api"),
	}
}

// NewRouter returns the API routes.
func NewRouter(opts NewAPIServerOptions) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware())
	r.Use(middleware.NewCORSMiddleware("GET, POST"))

	replays := r.PathPrefix("/replays").Subrouter()
	replays.Use(middleware.NewBodyLimitMiddleware(replay.MaxDecodedSize))
	replays.HandleFunc("", handlers.HandleListReplays(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
	replays.HandleFunc("", handlers.HandleCreateReplay(opts.Repository, opts.Selector)).Methods(http.MethodPost, http.MethodOptions)
	replays.HandleFunc("/{id}", handlers.HandleGetReplay(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
	replays.HandleFunc("/{id}/data", handlers.HandleDownloadReplay(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/streams", handlers.HandleListStreams(opts.Manager)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/streams/{id}/message", handlers.HandleGetStreamMessage(opts.Manager)).Methods(http.MethodGet, http.MethodOptions)

	return r
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		s.logger.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		s.logger.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.Info("API server closed")
			return
		}
		s.logger.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
