package spectator

import (
	"sync"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/google/uuid"
)

// Session decodes one live frame stream. Frames are buffered through a
// selector until a sync frame names the strategy, then fed to the decoder.
type Session struct {
	id       uuid.UUID
	selector *cipher.Selector

	lock         sync.Mutex
	decoder      *cipher.Decoder
	frames       int
	recorded     []cipher.Frame
	archived     bool
	broken       bool
	lastSequence uint32
	updatedAt    time.Time
}

// Status is a point in time view of a session.
type Status struct {
	ID       uuid.UUID `json:"id"`
	Strategy string    `json:"strategy,omitempty"`
	Phase    string    `json:"phase,omitempty"`
	Frames   int       `json:"frames"`
	Message  string    `json:"message"`
	Complete bool      `json:"complete"`
	// Broken is set once a bundle went missing. The message is never archived.
	Broken bool `json:"broken"`
}

func NewSession(id uuid.UUID, selector *cipher.Selector) *Session {
	return &Session{
		id:        id,
		selector:  selector,
		updatedAt: time.Now(),
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// AddFrames feeds frames in order.
func (s *Session) AddFrames(frames []cipher.Frame) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.addFrames(frames)
}

// AddSequencedFrames feeds a numbered bundle. Producers number bundles from
// one. Stale bundles are dropped. A gap breaks the session, since the frames
// after it can no longer be decoded.
func (s *Session) AddSequencedFrames(sequence uint32, frames []cipher.Frame) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.broken {
		return false
	}
	if sequence <= s.lastSequence {
		log.Warn("Dropping stale bundle %d for stream %s (last %d)", sequence, s.id, s.lastSequence)
		return false
	}
	if sequence != s.lastSequence+1 {
		log.Warn("Stream %s is missing bundles %d to %d", s.id, s.lastSequence+1, sequence-1)
		s.broken = true
		s.updatedAt = time.Now()
		return false
	}
	s.lastSequence = sequence
	s.addFrames(frames)
	return true
}

func (s *Session) addFrames(frames []cipher.Frame) {
	for _, frame := range frames {
		s.frames++
		if s.decoder == nil {
			strategy, ok := s.selector.Match(frame)
			if !ok {
				continue
			}
			log.Info("Stream %s uses %s from frame %d", s.id, strategy, s.frames)
			s.decoder = s.selector.NewDecoder(strategy)
		}
		// Unbounded streams are never archived, so their frames are not kept.
		if s.decoder.Strategy().Bounded() && !s.decoder.Complete() {
			s.recorded = append(s.recorded, frame)
		}
		s.decoder.ProcessFrame(frame)
	}
	s.updatedAt = time.Now()
}

// Message returns the message decoded so far. The live decoder is cloned so
// polling never observes a half applied frame.
func (s *Session) Message() (string, bool) {
	decoder := s.snapshot()
	if decoder == nil {
		return "", false
	}
	return decoder.GetDecodedMessage(), true
}

func (s *Session) Status() Status {
	s.lock.Lock()
	frames, broken := s.frames, s.broken
	s.lock.Unlock()

	status := Status{ID: s.id, Frames: frames, Broken: broken}
	decoder := s.snapshot()
	if decoder == nil {
		return status
	}
	status.Strategy = decoder.Strategy().String()
	status.Phase = decoder.Phase().String()
	status.Message = decoder.GetDecodedMessage()
	status.Complete = decoder.Complete()
	return status
}

// Archive returns the frames from the sync frame to the frame completing the
// message, and the message. It reports true once per session, after the
// message is complete. Broken sessions are never archived.
func (s *Session) Archive() (*replay.Replay, string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.archived || s.broken || s.decoder == nil || !s.decoder.Complete() {
		return nil, "", false
	}
	s.archived = true
	frames := make([]cipher.Frame, len(s.recorded))
	copy(frames, s.recorded)
	r := &replay.Replay{
		ID:       s.id,
		Strategy: s.decoder.Strategy().String(),
		Frames:   frames,
	}
	return r, s.decoder.GetDecodedMessage(), true
}

// RetryArchive makes a failed archive available again.
func (s *Session) RetryArchive() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.archived = false
}

func (s *Session) snapshot() *cipher.Decoder {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.decoder == nil {
		return nil
	}
	return s.decoder.Clone()
}

func (s *Session) UpdatedAt() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.updatedAt
}
