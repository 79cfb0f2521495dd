package replay

import (
	"fmt"
	"os"

	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/google/uuid"
)

// Replay is a recorded frame sequence. Strategy is informational; decoders
// identify the strategy from the sync frame.
type Replay struct {
	ID       uuid.UUID      `json:"id"`
	Strategy string         `json:"strategy,omitempty"`
	Frames   []cipher.Frame `json:"frames"`
}

// New creates a replay with a fresh random ID.
func New(strategy string, frames []cipher.Frame) *Replay {
	return &Replay{
		ID:       uuid.New(),
		Strategy: strategy,
		Frames:   frames,
	}
}

// Bundle is a batch of frames streamed for a live session. Sequence orders
// bundles of the same stream.
type Bundle struct {
	StreamID uuid.UUID
	Sequence uint32
	Frames   []cipher.Frame
}

// WriteFile writes the serialized replay to path.
func WriteFile(path string, r *Replay) error {
	b, err := SerializeReplay(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write replay file: %v", err)
	}
	return nil
}

// ReadFile reads a replay written by WriteFile.
func ReadFile(path string) (*Replay, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file: %v", err)
	}
	return DeserializeReplay(b)
}
