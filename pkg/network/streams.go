package network

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StreamConnection represents a producer connected to a stream.
type StreamConnection struct {
	StreamID    uuid.UUID `json:"stream_id"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
	Bundles     int       `json:"bundles"`
}

// StreamManager tracks the producers currently connected to the server.
// A stream accepts a single producer at a time.
type StreamManager struct {
	streams     map[uuid.UUID]*StreamConnection
	streamsLock sync.RWMutex
}

// NewStreamManager creates a new StreamManager
func NewStreamManager() *StreamManager {
	return &StreamManager{
		streams: make(map[uuid.UUID]*StreamConnection),
	}
}

// Connect registers a producer for a stream. It reports false if the stream
// already has one.
func (sm *StreamManager) Connect(streamID uuid.UUID, remoteAddr string) bool {
	sm.streamsLock.Lock()
	defer sm.streamsLock.Unlock()

	if _, ok := sm.streams[streamID]; ok {
		return false
	}
	sm.streams[streamID] = &StreamConnection{
		StreamID:    streamID,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
	}
	return true
}

// Disconnect removes the producer of a stream.
func (sm *StreamManager) Disconnect(streamID uuid.UUID) {
	sm.streamsLock.Lock()
	defer sm.streamsLock.Unlock()

	delete(sm.streams, streamID)
}

// CountBundle records a received bundle for a stream.
func (sm *StreamManager) CountBundle(streamID uuid.UUID) {
	sm.streamsLock.Lock()
	defer sm.streamsLock.Unlock()

	if conn, ok := sm.streams[streamID]; ok {
		conn.Bundles++
	}
}

// IsConnected reports whether a stream has a producer.
func (sm *StreamManager) IsConnected(streamID uuid.UUID) bool {
	sm.streamsLock.RLock()
	defer sm.streamsLock.RUnlock()

	_, ok := sm.streams[streamID]
	return ok
}

// GetStreams returns a slice with a copy of all connected streams.
func (sm *StreamManager) GetStreams() []StreamConnection {
	sm.streamsLock.RLock()
	defer sm.streamsLock.RUnlock()

	streams := make([]StreamConnection, 0, len(sm.streams))
	for _, conn := range sm.streams {
		streams = append(streams, *conn)
	}
	return streams
}
