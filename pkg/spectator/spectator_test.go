package spectator

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/queue"
	"github.com/cbodonnell/replaycipher/pkg/recorder"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessage = "spectated"

func recordFrames(t *testing.T, strategy cipher.Strategy) []cipher.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(4))
	opts := cipher.DefaultEncoderOptions()
	opts.Rand = rng
	r := recorder.New(
		cipher.NewEncoder(strategy, opts),
		bitstream.New(testMessage, bitcodec.DefaultCharWidth),
		recorder.Options{LeadInMin: 40, LeadInMax: 60, Rand: rng},
	)
	require.NoError(t, r.RecordAll(recorder.Path(r.LeadIn()+600, cipher.DefaultBounds(), rng)))
	return r.Frames()
}

func chunks(frames []cipher.Frame, size int) [][]cipher.Frame {
	var out [][]cipher.Frame
	for len(frames) > size {
		out = append(out, frames[:size])
		frames = frames[size:]
	}
	return append(out, frames)
}

func TestSessionStreaming(t *testing.T) {
	frames := recordFrames(t, cipher.StrategyDecimalPosition)
	s := NewSession(uuid.New(), cipher.NewSelector(cipher.DefaultDecoderOptions()))

	_, ok := s.Message()
	assert.False(t, ok)

	s.AddFrames(frames[:30])
	_, ok = s.Message()
	assert.False(t, ok, "lead-in frames do not select a decoder")
	assert.Equal(t, 30, s.Status().Frames)

	for _, chunk := range chunks(frames[30:], 17) {
		s.AddFrames(chunk)
		message, ok := s.Message()
		if ok {
			assert.True(t, len(message) <= len(testMessage))
			assert.Equal(t, testMessage[:len(message)], message)
		}
	}

	message, ok := s.Message()
	require.True(t, ok)
	assert.Equal(t, testMessage, message)

	status := s.Status()
	assert.Equal(t, "decimalposition", status.Strategy)
	assert.Equal(t, "payload", status.Phase)
	assert.True(t, status.Complete)
	assert.Equal(t, len(frames), status.Frames)
}

func TestSessionDropsStaleBundles(t *testing.T) {
	frames := recordFrames(t, cipher.StrategyHalves)
	s := NewSession(uuid.New(), cipher.NewSelector(cipher.DefaultDecoderOptions()))

	parts := chunks(frames, 100)
	for i, part := range parts {
		require.True(t, s.AddSequencedFrames(uint32(i+1), part))
	}
	assert.False(t, s.AddSequencedFrames(1, parts[0]))
	assert.False(t, s.AddSequencedFrames(uint32(len(parts)), parts[len(parts)-1]))

	message, ok := s.Message()
	require.True(t, ok)
	assert.Equal(t, testMessage, message)
}

func TestSessionBreaksOnMissingBundle(t *testing.T) {
	frames := recordFrames(t, cipher.StrategyLSBMask)
	s := NewSession(uuid.New(), cipher.NewSelector(cipher.DefaultDecoderOptions()))

	parts := chunks(frames, 20)
	require.Greater(t, len(parts), 8)
	for i := 0; i < 3; i++ {
		require.True(t, s.AddSequencedFrames(uint32(i+1), parts[i]))
	}
	// Bundle 4 never arrives.
	for i := 4; i < len(parts); i++ {
		assert.False(t, s.AddSequencedFrames(uint32(i+1), parts[i]), "bundle %d", i+1)
	}
	assert.False(t, s.AddSequencedFrames(4, parts[3]), "a broken session stays broken")

	status := s.Status()
	assert.True(t, status.Broken)
	assert.False(t, status.Complete)
	assert.Equal(t, 60, status.Frames)

	_, _, ok := s.Archive()
	assert.False(t, ok)
}

func TestSessionRequiresFirstBundle(t *testing.T) {
	frames := recordFrames(t, cipher.StrategyHalves)
	s := NewSession(uuid.New(), cipher.NewSelector(cipher.DefaultDecoderOptions()))

	assert.False(t, s.AddSequencedFrames(2, frames))
	assert.True(t, s.Status().Broken)
}

func TestSessionSkipsRecordingUnboundedStreams(t *testing.T) {
	frames := recordFrames(t, cipher.StrategyNetworkTest)
	s := NewSession(uuid.New(), cipher.NewSelector(cipher.DefaultDecoderOptions()))
	s.AddFrames(frames)

	status := s.Status()
	assert.Equal(t, "networktest", status.Strategy)
	assert.False(t, status.Complete)
	assert.Empty(t, s.recorded)
	_, _, ok := s.Archive()
	assert.False(t, ok)
}

func TestManager(t *testing.T) {
	m := NewManager(cipher.NewSelector(cipher.DefaultDecoderOptions()))
	id := uuid.New()

	_, ok := m.Get(id)
	assert.False(t, ok)

	s := m.GetOrCreate(id)
	assert.Same(t, s, m.GetOrCreate(id))
	assert.Len(t, m.List(), 1)

	assert.Equal(t, 0, m.Expire(time.Now().Add(-time.Minute)))
	assert.Equal(t, 1, m.Expire(time.Now().Add(time.Minute)))
	_, ok = m.Get(id)
	assert.False(t, ok)

	m.GetOrCreate(id)
	m.Remove(id)
	assert.Empty(t, m.List())
}

func TestWorker(t *testing.T) {
	frames := recordFrames(t, cipher.StrategyLetterMapping)
	q := queue.NewInMemoryQueue(0)
	m := NewManager(cipher.NewSelector(cipher.DefaultDecoderOptions()))
	w := NewWorker(NewWorkerOptions{
		BundleQueue: q,
		Manager:     m,
		Interval:    5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	streamID := uuid.New()
	for i, part := range chunks(frames, 64) {
		require.NoError(t, q.Enqueue(&replay.Bundle{StreamID: streamID, Sequence: uint32(i + 1), Frames: part}))
	}
	require.NoError(t, q.Enqueue("not a bundle"))

	assert.Eventually(t, func() bool {
		s, ok := m.Get(streamID)
		if !ok {
			return false
		}
		message, _ := s.Message()
		return message == testMessage
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionArchive(t *testing.T) {
	frames := recordFrames(t, cipher.StrategyLSBMask)
	selector := cipher.NewSelector(cipher.DefaultDecoderOptions())
	s := NewSession(uuid.New(), selector)

	s.AddFrames(frames[:10])
	_, _, ok := s.Archive()
	assert.False(t, ok, "nothing to archive before the message completes")

	s.AddFrames(frames[10:])
	r, message, ok := s.Archive()
	require.True(t, ok)
	assert.Equal(t, testMessage, message)
	assert.Equal(t, s.ID(), r.ID)
	assert.Equal(t, cipher.StrategyLSBMask.String(), r.Strategy)
	assert.Less(t, len(r.Frames), len(frames))

	strategy, decoded, err := selector.Decode(r.Frames)
	require.NoError(t, err)
	assert.Equal(t, cipher.StrategyLSBMask, strategy)
	assert.Equal(t, testMessage, decoded)

	_, _, ok = s.Archive()
	assert.False(t, ok, "a session is archived once")
	s.RetryArchive()
	_, _, ok = s.Archive()
	assert.True(t, ok)
}
