package cipher

import (
	"errors"
)

// ErrNoSyncFrame is returned when no frame matches a registered sync key.
var ErrNoSyncFrame = errors.New("no synchronization frame found")

// Selector maps sync frames of unknown streams to fresh decoders.
type Selector struct {
	opts DecoderOptions
	keys map[string]Strategy
}

// NewSelector builds a selector over the given strategies, or over every
// strategy if none are given.
func NewSelector(opts DecoderOptions, strategies ...Strategy) *Selector {
	if len(strategies) == 0 {
		strategies = Strategies()
	}
	keys := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		if s.Valid() {
			keys[s.SyncKey()] = s
		}
	}
	return &Selector{
		opts: opts.withDefaults(),
		keys: keys,
	}
}

// Match reports the strategy whose sync key is carried by frame.
func (s *Selector) Match(frame Frame) (Strategy, bool) {
	strategy, ok := s.keys[frame.Position.SyncKey()]
	return strategy, ok
}

// NewDecoder returns a decoder for strategy using the selector's options.
func (s *Selector) NewDecoder(strategy Strategy) *Decoder {
	return NewDecoder(strategy, s.opts)
}

// Find scans frames for the first sync frame. The returned decoder has
// already consumed frames up to and including index.
func (s *Selector) Find(frames []Frame) (*Decoder, int, bool) {
	for i, frame := range frames {
		strategy, ok := s.Match(frame)
		if !ok {
			continue
		}
		decoder := s.NewDecoder(strategy)
		decoder.ProcessFrame(frame)
		return decoder, i, true
	}
	return nil, -1, false
}

// Decode selects a decoder for frames and feeds it the whole remainder.
// Decoding errors on single frames are reported through the returned error
// alongside the partial message.
func (s *Selector) Decode(frames []Frame) (Strategy, string, error) {
	decoder, index, ok := s.Find(frames)
	if !ok {
		return 0, "", ErrNoSyncFrame
	}
	for _, frame := range frames[index+1:] {
		decoder.ProcessFrame(frame)
	}
	return decoder.Strategy(), decoder.GetDecodedMessage(), decoder.Err()
}
