package recorder

import (
	"math/rand"
	"testing"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	bounds := cipher.DefaultBounds()
	frames := Path(500, bounds, rand.New(rand.NewSource(1)))
	require.Len(t, frames, 500)

	pressed := 0
	for i, f := range frames {
		assert.True(t, bounds.Contains(f.Position), "frame %d out of bounds: %+v", i, f.Position)
		if f.ActionsPressed {
			pressed++
		}
	}
	assert.Greater(t, pressed, 0)
	assert.Less(t, pressed, len(frames)/2)
}

func TestRecorderLeadIn(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	opts := cipher.DefaultEncoderOptions()
	opts.Rand = rng
	bits := bitstream.New("lead", bitcodec.DefaultCharWidth)
	r := New(cipher.NewEncoder(cipher.StrategyHalves, opts), bits, Options{
		LeadInMin: DefaultLeadInMin,
		LeadInMax: DefaultLeadInMax,
		Rand:      rng,
	})
	assert.GreaterOrEqual(t, r.LeadIn(), DefaultLeadInMin)
	assert.Less(t, r.LeadIn(), DefaultLeadInMax)

	path := Path(r.LeadIn()+200, cipher.DefaultBounds(), rng)
	require.NoError(t, r.RecordAll(path))
	frames := r.Frames()
	require.Len(t, frames, len(path))
	assert.Equal(t, path[:r.LeadIn()], frames[:r.LeadIn()])
	assert.True(t, r.Done())

	selector := cipher.NewSelector(cipher.DefaultDecoderOptions())
	strategy, ok := selector.Match(frames[r.LeadIn()])
	require.True(t, ok)
	assert.Equal(t, cipher.StrategyHalves, strategy)
}

func TestRecorderFixedLeadIn(t *testing.T) {
	bits := bitstream.New("x", bitcodec.DefaultCharWidth)
	r := New(cipher.NewEncoder(cipher.StrategyBitMask, cipher.DefaultEncoderOptions()), bits, Options{LeadInMin: 5, LeadInMax: 5})
	assert.Equal(t, 5, r.LeadIn())
	assert.False(t, r.Done())

	frame, err := r.Record(cipher.Position{X: 1.5, Y: 2.5}, false)
	require.NoError(t, err)
	assert.Equal(t, cipher.Position{X: 1.5, Y: 2.5}, frame.Position)

	// Frames is a copy.
	frames := r.Frames()
	frames[0].ActionsPressed = true
	assert.False(t, r.Frames()[0].ActionsPressed)
}

func TestRecorderDoneWaitsForHeader(t *testing.T) {
	bits := bitstream.New("", bitcodec.DefaultCharWidth)
	r := New(cipher.NewEncoder(cipher.StrategyFractions, cipher.DefaultEncoderOptions()), bits, Options{})
	require.Equal(t, 0, r.LeadIn())

	_, err := r.Record(cipher.Position{X: 10.25, Y: 10.25}, false)
	require.NoError(t, err)
	// Pressed frames cannot carry the Fractions header.
	for i := 0; i < 3; i++ {
		_, err := r.Record(cipher.Position{X: 20.25, Y: 20.25}, true)
		require.NoError(t, err)
		assert.False(t, r.Done(), "header still pending after frame %d", i+1)
	}

	_, err = r.Record(cipher.Position{X: 30.25, Y: 30.25}, false)
	require.NoError(t, err)
	assert.True(t, r.Done())

	_, message, err := cipher.NewSelector(cipher.DefaultDecoderOptions()).Decode(r.Frames())
	require.NoError(t, err)
	assert.Equal(t, "", message)
}

func TestRecorderRoundTrip(t *testing.T) {
	const message = "Recorded between the lines, hidden in cursor noise."
	for _, strategy := range cipher.Strategies() {
		if strategy == cipher.StrategyNetworkTest {
			continue
		}
		t.Run(strategy.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(strategy) + 10))
			opts := cipher.DefaultEncoderOptions()
			opts.Rand = rng
			bits := bitstream.New(message, bitcodec.DefaultCharWidth)
			r := New(cipher.NewEncoder(strategy, opts), bits, Options{LeadInMin: 300, LeadInMax: 400, Rand: rng})

			require.NoError(t, r.RecordAll(Path(r.LeadIn()+3000, cipher.DefaultBounds(), rng)))
			require.True(t, r.Done())

			got, decoded, err := cipher.NewSelector(cipher.DefaultDecoderOptions()).Decode(r.Frames())
			require.NoError(t, err)
			assert.Equal(t, strategy, got)
			assert.Equal(t, message, decoded)
		})
	}
}
