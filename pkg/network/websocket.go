package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/queue"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
)

// DefaultReadLimit bounds a single compressed bundle.
const DefaultReadLimit = 1 << 20

// WSServer receives frame bundles from producers over WebSocket and enqueues
// them for the spectator worker.
type WSServer struct {
	port          int
	tls           *TLSConfig
	bundleQueue   queue.Queue
	streamManager *StreamManager
	readLimit     int64
	logger        *log.Logger
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewWSServerOptions struct {
	Port          int
	TLS           *TLSConfig
	BundleQueue   queue.Queue
	StreamManager *StreamManager
	ReadLimit     int64
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	if opts.StreamManager == nil {
		opts.StreamManager = NewStreamManager()
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = DefaultReadLimit
	}
	return &WSServer{
		port:          opts.Port,
		tls:           opts.TLS,
		bundleQueue:   opts.BundleQueue,
		streamManager: opts.StreamManager,
		readLimit:     opts.ReadLimit,
		logger:        log.Default().With("network"),
	}
}

// StreamManager returns the registry of connected producers.
func (s *WSServer) StreamManager() *StreamManager {
	return s.streamManager
}

// Handler returns the routes served by the WebSocket server.
func (s *WSServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/streams/{id}", s.handleStream)
	return r
}

// Start starts the WebSocket server.
func (s *WSServer) Start(ctx context.Context) {
	addr := fmt.Sprintf(":%d", s.port)
	server := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	var listenAndServe func() error
	if s.tls != nil {
		s.logger.Info("WebSocket server listening on %s with TLS", addr)
		listenAndServe = func() error {
			return server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		s.logger.Info("WebSocket server listening on %s", addr)
		listenAndServe = server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.Info("WebSocket server closed")
			return
		}
		s.logger.Error("WebSocket server error: %v", err)
	}
}

func (s *WSServer) handleStream(w http.ResponseWriter, r *http.Request) {
	streamID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid stream id", http.StatusBadRequest)
		return
	}
	if !s.streamManager.Connect(streamID, r.RemoteAddr) {
		http.Error(w, "stream already has a producer", http.StatusConflict)
		return
	}
	defer s.streamManager.Disconnect(streamID)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Error("Failed to accept WebSocket connection: %v", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(s.readLimit)
	s.logger.Debug("New stream %s from %s", streamID, r.RemoteAddr)

	if err := s.handleWSConnection(r.Context(), conn, streamID); err != nil {
		s.logger.Error("Stream %s from %s failed: %v", streamID, r.RemoteAddr, err)
		return
	}
	s.logger.Trace("Stream %s closed by %s", streamID, r.RemoteAddr)
}

// handleWSConnection reads bundles until the producer closes the connection.
func (s *WSServer) handleWSConnection(ctx context.Context, conn *websocket.Conn, streamID uuid.UUID) error {
	for {
		bundle, err := ReadBundleFromWS(ctx, conn)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, errUnsupportedMessage) {
				conn.Close(websocket.StatusUnsupportedData, "expected binary bundle")
			}
			return err
		}

		// The path names the stream; a bundle cannot write into another one.
		bundle.StreamID = streamID
		// A dropped bundle desyncs the decoder, so the producer has to stop.
		if err := s.bundleQueue.Enqueue(bundle); err != nil {
			conn.Close(websocket.StatusTryAgainLater, "bundle queue full")
			return fmt.Errorf("failed to enqueue bundle %d: %w", bundle.Sequence, err)
		}
		s.streamManager.CountBundle(streamID)
	}
}

var errUnsupportedMessage = errors.New("unsupported message type")

// WriteBundleToWS writes a Bundle to a WebSocket connection
func WriteBundleToWS(ctx context.Context, conn *websocket.Conn, bundle *replay.Bundle) error {
	b, err := replay.SerializeBundle(bundle)
	if err != nil {
		return fmt.Errorf("failed to serialize bundle: %v", err)
	}

	if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write bundle to WebSocket connection: %w", err)
	}

	return nil
}

// ReadBundleFromWS reads a Bundle from a WebSocket connection
func ReadBundleFromWS(ctx context.Context, conn *websocket.Conn) (*replay.Bundle, error) {
	typ, message, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageBinary {
		return nil, fmt.Errorf("%w: %v", errUnsupportedMessage, typ)
	}

	bundle, err := replay.DeserializeBundle(message)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize bundle: %v", err)
	}

	return bundle, nil
}
