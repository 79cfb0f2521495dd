package network

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// WSClient streams recorded frames to a WebSocket server.
type WSClient struct {
	serverAddr string
	streamID   uuid.UUID

	lock     sync.Mutex
	sequence uint32
	conn     *websocket.Conn
}

// NewWSClient creates a new WebSocket client for a stream. serverAddr is the
// base URL of the server, for example ws://localhost:8889.
func NewWSClient(serverAddr string, streamID uuid.UUID) *WSClient {
	return &WSClient{
		serverAddr: strings.TrimSuffix(serverAddr, "/"),
		streamID:   streamID,
	}
}

func (c *WSClient) StreamID() uuid.UUID {
	return c.streamID
}

// Connect establishes a connection to the WebSocket server.
func (c *WSClient) Connect(ctx context.Context) error {
	url := fmt.Sprintf("%s/streams/%s", c.serverAddr, c.streamID)
	log.Info("Connecting to WebSocket server at %s", url)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %v", err)
	}

	c.lock.Lock()
	c.conn = conn
	c.lock.Unlock()
	return nil
}

// SendFrames sends frames as the next bundle of the stream.
func (c *WSClient) SendFrames(ctx context.Context, frames []cipher.Frame) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.sequence++
	bundle := &replay.Bundle{
		StreamID: c.streamID,
		Sequence: c.sequence,
		Frames:   frames,
	}
	if err := WriteBundleToWS(ctx, c.conn, bundle); err != nil {
		return err
	}
	log.Trace("Sent bundle %d with %d frames on stream %s", c.sequence, len(frames), c.streamID)
	return nil
}

// Close closes the WebSocket connection.
func (c *WSClient) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.conn == nil {
		log.Warn("WebSocket connection is already closed")
		return nil
	}
	err := c.conn.Close(websocket.StatusNormalClosure, "")
	c.conn = nil
	return err
}
