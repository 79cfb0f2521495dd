package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`
strategy: decimal-position
digit_position: 2
char_width: 7
lead_in:
  min: 10
  max: 20
bounds:
  width: 640
  height: 480
seed: 42
`))
	require.NoError(t, err)
	assert.Equal(t, cipher.StrategyDecimalPosition, p.Strategy)
	assert.Equal(t, 2, p.DigitPosition)
	assert.Equal(t, cipher.DefaultMask, p.Mask)
	assert.Equal(t, LeadInConfig{Min: 10, Max: 20}, p.LeadIn)
	require.NotNil(t, p.Seed)
	assert.Equal(t, int64(42), *p.Seed)

	enc := p.EncoderOptions(nil)
	assert.Equal(t, cipher.Bounds{Width: 640, Height: 480}, enc.Bounds)
	assert.Equal(t, 2, enc.DigitPosition)
	dec := p.DecoderOptions()
	assert.Equal(t, bitcodec.CharWidth7, dec.CharWidth)
	rec := p.RecorderOptions(nil)
	assert.Equal(t, 10, rec.LeadInMin)
	assert.Equal(t, 20, rec.LeadInMax)
}

func TestParseEmptyIsDefault(t *testing.T) {
	p, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestSeededRandIsDeterministic(t *testing.T) {
	p, err := Parse([]byte("seed: 7\n"))
	require.NoError(t, err)
	a, b := p.Rand(), p.Rand()
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown strategy", yaml: "strategy: morse\n"},
		{name: "unknown field", yaml: "strategies: bitmask\n"},
		{name: "mask too wide", yaml: "mask: 0x1000000\n"},
		{name: "empty mask", yaml: "strategy: lsbmask\nmask: 0\n"},
		{name: "digit position", yaml: "digit_position: 4\n"},
		{name: "char width", yaml: "char_width: 6\n"},
		{name: "lead in", yaml: "lead_in: {min: 10, max: 5}\n"},
		{name: "bounds", yaml: "bounds: {width: 0, height: 100}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestZeroMaskAllowedForOtherStrategies(t *testing.T) {
	_, err := Parse([]byte("strategy: halves\nmask: 0\n"))
	assert.NoError(t, err)
}

func TestLoadAndMarshal(t *testing.T) {
	p := Default()
	p.Strategy = cipher.StrategyLetterMapping
	b, err := p.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(b), "strategy: lettermapping")

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, b, 0644))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
