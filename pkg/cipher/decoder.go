package cipher

import (
	"strconv"
	"strings"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/log"
)

// Decoder accumulates a hidden message from frames fed in recording order.
// A Decoder is not safe for concurrent use; pollers read from a Clone.
type Decoder struct {
	strategy Strategy
	opts     DecoderOptions
	phase    Phase
	frames   int

	messageLength int
	mask          int
	digitPosition int
	counterDigits int

	bits    []byte
	indexes []int

	err error
}

// NewDecoder creates a decoder waiting for the strategy's sync frame.
func NewDecoder(strategy Strategy, opts DecoderOptions) *Decoder {
	return &Decoder{
		strategy: strategy,
		opts:     opts.withDefaults(),
	}
}

func (d *Decoder) Strategy() Strategy {
	return d.strategy
}

func (d *Decoder) Phase() Phase {
	return d.phase
}

// Frames returns the number of frames passed to ProcessFrame.
func (d *Decoder) Frames() int {
	return d.frames
}

// MessageLength returns the payload bit length declared by the header frame.
func (d *Decoder) MessageLength() int {
	return d.messageLength
}

// Err returns the first error raised while reading a frame, if any. Such
// frames contribute nothing to the message.
func (d *Decoder) Err() error {
	return d.err
}

// Complete reports whether the declared message length has been read.
func (d *Decoder) Complete() bool {
	if d.phase != PhasePayload || !d.strategy.Bounded() {
		return false
	}
	return len(d.bits) >= d.messageLength
}

// ProcessFrame advances the decoder by one frame.
func (d *Decoder) ProcessFrame(frame Frame) {
	d.frames++
	if !d.strategy.Valid() {
		return
	}
	c := &codecs[d.strategy]

	switch d.phase {
	case PhaseSync:
		if frame.Position.SyncKey() == d.strategy.SyncKey() {
			d.advance(PhaseHeader)
		}
	case PhaseHeader:
		if c.skip != nil && c.skip(d.opts.Bounds, frame, PhaseHeader) {
			return
		}
		d.record(c.decodeHeader(d, frame.Position))
		log.Debug("Decoder %s read header at frame %d: length=%d", d.strategy, d.frames, d.messageLength)
		d.advance(PhasePayload)
	case PhasePayload:
		if c.skip != nil && c.skip(d.opts.Bounds, frame, PhasePayload) {
			return
		}
		if d.Complete() {
			return
		}
		d.record(c.decodePayload(d, frame))
	}
}

// GetDecodedMessage returns the message accumulated so far. It may be called
// at any time and does not change the decoder.
func (d *Decoder) GetDecodedMessage() string {
	if d.strategy == StrategyNetworkTest {
		parts := make([]string, len(d.indexes))
		for i, index := range d.indexes {
			parts[i] = strconv.Itoa(index)
		}
		return strings.Join(parts, " ")
	}
	return bitcodec.DecodeText(string(d.bits), d.opts.CharWidth)
}

// Clone returns an independent copy sharing no mutable storage.
func (d *Decoder) Clone() *Decoder {
	clone := *d
	clone.bits = append([]byte(nil), d.bits...)
	clone.indexes = append([]int(nil), d.indexes...)
	return &clone
}

func (d *Decoder) advance(phase Phase) {
	log.Trace("Decoder %s moved to %s phase at frame %d", d.strategy, phase, d.frames)
	d.phase = phase
}

func (d *Decoder) record(err error) {
	if err == nil {
		return
	}
	log.Debug("Decoder %s dropped frame %d: %v", d.strategy, d.frames, err)
	if d.err == nil {
		d.err = err
	}
}

// appendBits adds decoded bits, never growing past the declared length.
func (d *Decoder) appendBits(bits string) {
	room := d.messageLength - len(d.bits)
	if room <= 0 {
		return
	}
	if len(bits) > room {
		bits = bits[:room]
	}
	d.bits = append(d.bits, bits...)
}
