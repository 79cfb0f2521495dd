package replay

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFrames includes bit patterns that text or float64 round trips would
// not preserve.
func testFrames() []cipher.Frame {
	return []cipher.Frame{
		{Position: cipher.Position{X: 0, Y: 0}},
		{Position: cipher.Position{X: float32(math.Copysign(0, -1)), Y: 1e-45}, ActionsPressed: true},
		{Position: cipher.Position{X: math.Float32frombits(0x7FC00001), Y: math.Float32frombits(0xFF800000)}},
		{Position: cipher.Position{X: 511.999, Y: -3.25}},
		{Position: cipher.Position{X: math.Float32frombits(0xBF959F78), Y: math.Float32frombits(0xBFF2AB3E)}, ActionsPressed: true},
	}
}

func assertFramesEqual(t *testing.T, want, got []cipher.Frame) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, math.Float32bits(want[i].Position.X), math.Float32bits(got[i].Position.X), "frame %d x", i)
		assert.Equal(t, math.Float32bits(want[i].Position.Y), math.Float32bits(got[i].Position.Y), "frame %d y", i)
		assert.Equal(t, want[i].ActionsPressed, got[i].ActionsPressed, "frame %d pressed", i)
	}
}

func TestSerializeReplay(t *testing.T) {
	r := New("bitmask", testFrames())

	b, err := SerializeReplay(r)
	require.NoError(t, err)

	got, err := DeserializeReplay(b)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "bitmask", got.Strategy)
	assertFramesEqual(t, r.Frames, got.Frames)
}

func TestSerializeEmptyReplay(t *testing.T) {
	r := &Replay{ID: uuid.New()}

	b, err := SerializeReplay(r)
	require.NoError(t, err)

	got, err := DeserializeReplay(b)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Empty(t, got.Strategy)
	assert.Empty(t, got.Frames)
}

func TestSerializeBundle(t *testing.T) {
	bundle := &Bundle{
		StreamID: uuid.New(),
		Sequence: 42,
		Frames:   testFrames(),
	}

	b, err := SerializeBundle(bundle)
	require.NoError(t, err)

	got, err := DeserializeBundle(b)
	require.NoError(t, err)
	assert.Equal(t, bundle.StreamID, got.StreamID)
	assert.Equal(t, uint32(42), got.Sequence)
	assertFramesEqual(t, bundle.Frames, got.Frames)

	frames, err := DeserializeFrames(mustSerializeFrames(t, bundle.Frames))
	require.NoError(t, err)
	assertFramesEqual(t, bundle.Frames, frames)
}

func mustSerializeFrames(t *testing.T, frames []cipher.Frame) []byte {
	t.Helper()
	b, err := SerializeFrames(frames)
	require.NoError(t, err)
	return b
}

func TestDeserializeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not zstd", data: []byte("definitely not a replay")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeReplay(tt.data)
			assert.Error(t, err)
			_, err = DeserializeBundle(tt.data)
			assert.Error(t, err)
		})
	}

	t.Run("truncated flatbuffer", func(t *testing.T) {
		b, err := SerializeReplayFlatbuffer(New("halves", testFrames()))
		require.NoError(t, err)
		_, err = DeserializeReplayFlatbuffer(b[:len(b)/2])
		assert.Error(t, err)
	})
}

func TestFileRoundTripKeepsMessage(t *testing.T) {
	bits := bitstream.New("saved", bitcodec.DefaultCharWidth)
	encoder := cipher.NewEncoder(cipher.StrategyLSBMask, cipher.DefaultEncoderOptions())
	frames := make([]cipher.Frame, 0, 120)
	for i := 0; i < 120; i++ {
		p := cipher.Position{X: float32(i) + 0.25, Y: float32(2*i) + 0.5}
		out, err := encoder.Encode(p, false, bits)
		require.NoError(t, err)
		frames = append(frames, cipher.Frame{Position: out})
	}

	path := filepath.Join(t.TempDir(), "message.replay")
	require.NoError(t, WriteFile(path, New(cipher.StrategyLSBMask.String(), frames)))

	got, err := ReadFile(path)
	require.NoError(t, err)
	strategy, message, err := cipher.NewSelector(cipher.DefaultDecoderOptions()).Decode(got.Frames)
	require.NoError(t, err)
	assert.Equal(t, cipher.StrategyLSBMask, strategy)
	assert.Equal(t, "saved", message)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.replay"))
	assert.Error(t, err)
}
