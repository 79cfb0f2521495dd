package cipher

import (
	"fmt"

	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/log"
)

// Encoder embeds a BitStream into consecutive cursor positions. It must be
// called exactly once per produced frame, in order.
type Encoder struct {
	strategy Strategy
	opts     EncoderOptions
	phase    Phase
	frames   int
	counter  int
}

// NewEncoder creates an encoder for the given strategy. Construction never
// fails; an unknown strategy yields an encoder that passes positions through.
func NewEncoder(strategy Strategy, opts EncoderOptions) *Encoder {
	return &Encoder{
		strategy: strategy,
		opts:     opts.withDefaults(),
	}
}

func (e *Encoder) Strategy() Strategy {
	return e.strategy
}

func (e *Encoder) Phase() Phase {
	return e.phase
}

// Frames returns the number of frames passed to Encode.
func (e *Encoder) Frames() int {
	return e.frames
}

// Encode returns the position to record for the current frame. The input
// position is never modified in place. Errors are contract violations raised
// by floatbits and leave the position unchanged.
func (e *Encoder) Encode(position Position, actionsPressed bool, bits *bitstream.BitStream) (Position, error) {
	e.frames++
	if !e.strategy.Valid() {
		return position, nil
	}

	c := &codecs[e.strategy]
	frame := Frame{Position: position, ActionsPressed: actionsPressed}
	out := position

	switch e.phase {
	case PhaseSync:
		if err := writeSyncKey(&out, e.strategy.SyncKey()); err != nil {
			return position, fmt.Errorf("failed to write %s sync frame: %w", e.strategy, err)
		}
		e.advance(PhaseHeader)
	case PhaseHeader:
		if c.skip != nil && c.skip(e.opts.Bounds, frame, PhaseHeader) {
			return position, nil
		}
		if err := c.encodeHeader(e, &out, bits); err != nil {
			return position, fmt.Errorf("failed to write %s header frame: %w", e.strategy, err)
		}
		// The decoder filters the written frame, so the header only counts
		// if the rewrite still passes the filter.
		if c.skip != nil && c.skip(e.opts.Bounds, Frame{Position: out, ActionsPressed: actionsPressed}, PhaseHeader) {
			return out, nil
		}
		e.advance(PhasePayload)
	case PhasePayload:
		if c.skip != nil && c.skip(e.opts.Bounds, frame, PhasePayload) {
			return position, nil
		}
		if err := c.encodePayload(e, &out, actionsPressed, bits); err != nil {
			return position, fmt.Errorf("failed to write %s payload frame: %w", e.strategy, err)
		}
	}

	return out, nil
}

func (e *Encoder) advance(phase Phase) {
	log.Trace("Encoder %s moved to %s phase at frame %d", e.strategy, phase, e.frames)
	e.phase = phase
}
