package recorder

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/log"
)

// Default bounds of the pass-through lead-in, in frames. The lead-in is drawn
// from [min, max).
const (
	DefaultLeadInMin = 300
	DefaultLeadInMax = 400
)

type Options struct {
	LeadInMin int
	LeadInMax int
	// Rand draws the lead-in length. Defaults to a time seeded source.
	Rand cipher.Rand
}

func DefaultOptions() Options {
	return Options{
		LeadInMin: DefaultLeadInMin,
		LeadInMax: DefaultLeadInMax,
	}
}

// Recorder records frames, passing the first frames through unchanged and
// feeding every later frame to the encoder.
type Recorder struct {
	encoder *cipher.Encoder
	bits    *bitstream.BitStream
	leadIn  int
	frames  []cipher.Frame
	lock    sync.RWMutex
}

func New(encoder *cipher.Encoder, bits *bitstream.BitStream, opts Options) *Recorder {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	leadIn := opts.LeadInMin
	if opts.LeadInMax > opts.LeadInMin {
		leadIn += rng.Intn(opts.LeadInMax - opts.LeadInMin)
	}
	if leadIn < 0 {
		leadIn = 0
	}
	log.Debug("Recorder will encode %s after %d lead-in frames", encoder.Strategy(), leadIn)

	return &Recorder{
		encoder: encoder,
		bits:    bits,
		leadIn:  leadIn,
	}
}

// LeadIn returns the number of frames recorded unchanged before the sync frame.
func (r *Recorder) LeadIn() int {
	return r.leadIn
}

// Record appends one frame and returns it as recorded.
func (r *Recorder) Record(position cipher.Position, actionsPressed bool) (cipher.Frame, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	frame := cipher.Frame{Position: position, ActionsPressed: actionsPressed}
	if len(r.frames) >= r.leadIn {
		encoded, err := r.encoder.Encode(position, actionsPressed, r.bits)
		if err != nil {
			return cipher.Frame{}, fmt.Errorf("failed to encode frame %d: %v", len(r.frames), err)
		}
		frame.Position = encoded
	}
	r.frames = append(r.frames, frame)
	return frame, nil
}

// RecordAll records every frame of path in order.
func (r *Recorder) RecordAll(path []cipher.Frame) error {
	for _, f := range path {
		if _, err := r.Record(f.Position, f.ActionsPressed); err != nil {
			return err
		}
	}
	return nil
}

// Frames returns a copy of the recorded frames.
func (r *Recorder) Frames() []cipher.Frame {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]cipher.Frame(nil), r.frames...)
}

// Done reports whether the header is written and the whole message has been
// handed to the encoder.
func (r *Recorder) Done() bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.encoder.Phase() == cipher.PhasePayload && !r.bits.AreBitsLeft(1)
}
