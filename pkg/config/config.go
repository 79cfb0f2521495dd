// Package config loads strategy profiles.
//
// A profile is a YAML document naming the strategy and its parameters. Fields
// left out keep their defaults; unknown fields are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/floatbits"
	"github.com/cbodonnell/replaycipher/pkg/recorder"
	"gopkg.in/yaml.v3"
)

// MaxDigitPosition is the deepest decimal digit a profile may use.
const MaxDigitPosition = cipher.MaxDigitPosition

// Profile configures an encoder/decoder pair.
type Profile struct {
	Strategy cipher.Strategy `yaml:"strategy"`

	// Mask selects the Y mantissa bits carried by the mask strategies.
	Mask int `yaml:"mask"`

	// DigitPosition is the decimal digit (0 = tenths) used by the digit strategies.
	DigitPosition int `yaml:"digit_position"`

	// CharWidth is 7 or 8 bits per character.
	CharWidth int `yaml:"char_width"`

	// LeadIn is the number of unchanged frames recorded before the sync frame.
	LeadIn LeadInConfig `yaml:"lead_in"`

	// Bounds is the visible playfield.
	Bounds BoundsConfig `yaml:"bounds"`

	// Seed makes the encoder noise deterministic when set.
	Seed *int64 `yaml:"seed,omitempty"`
}

type LeadInConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type BoundsConfig struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// Default returns the default profile.
func Default() *Profile {
	bounds := cipher.DefaultBounds()
	return &Profile{
		Strategy:      cipher.StrategyBitMask,
		Mask:          cipher.DefaultMask,
		DigitPosition: cipher.DefaultDigitPosition,
		CharWidth:     int(bitcodec.DefaultCharWidth),
		LeadIn: LeadInConfig{
			Min: recorder.DefaultLeadInMin,
			Max: recorder.DefaultLeadInMax,
		},
		Bounds: BoundsConfig{
			Width:  bounds.Width,
			Height: bounds.Height,
		},
	}
}

// Load reads and validates the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %v", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %v", path, err)
	}
	return p, nil
}

// Parse decodes a profile over the defaults and validates it.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse profile: %v", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Marshal encodes the profile as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate checks every field against the ranges the codec accepts.
func (p *Profile) Validate() error {
	var errs []error
	if !p.Strategy.Valid() {
		errs = append(errs, &cipher.ErrUnknownStrategy{Name: p.Strategy.String()})
	}
	if p.Mask < 0 || p.Mask > floatbits.MantissaMask {
		errs = append(errs, fmt.Errorf("mask %#x outside 0..%#x", p.Mask, floatbits.MantissaMask))
	} else if p.Mask == 0 && (p.Strategy == cipher.StrategyBitMask || p.Strategy == cipher.StrategyLSBMask) {
		errs = append(errs, fmt.Errorf("mask must select at least one bit for %s", p.Strategy))
	}
	if p.DigitPosition < 0 || p.DigitPosition > MaxDigitPosition {
		errs = append(errs, fmt.Errorf("digit_position %d outside 0..%d", p.DigitPosition, MaxDigitPosition))
	}
	if _, err := bitcodec.ParseCharWidth(p.CharWidth); err != nil {
		errs = append(errs, err)
	}
	if p.LeadIn.Min < 0 || p.LeadIn.Max < p.LeadIn.Min {
		errs = append(errs, fmt.Errorf("lead_in must satisfy 0 <= min <= max, got %d..%d", p.LeadIn.Min, p.LeadIn.Max))
	}
	if p.Bounds.Width <= 0 || p.Bounds.Height <= 0 {
		errs = append(errs, fmt.Errorf("bounds must be positive, got %gx%g", p.Bounds.Width, p.Bounds.Height))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid profile: %w", errors.Join(errs...))
	}
	return nil
}

// Rand returns the profile's random source, seeded from Seed when set.
func (p *Profile) Rand() cipher.Rand {
	seed := time.Now().UnixNano()
	if p.Seed != nil {
		seed = *p.Seed
	}
	return rand.New(rand.NewSource(seed))
}

func (p *Profile) CipherBounds() cipher.Bounds {
	return cipher.Bounds{Width: p.Bounds.Width, Height: p.Bounds.Height}
}

func (p *Profile) EncoderOptions(rng cipher.Rand) cipher.EncoderOptions {
	return cipher.EncoderOptions{
		Mask:          p.Mask,
		DigitPosition: p.DigitPosition,
		Bounds:        p.CipherBounds(),
		Rand:          rng,
	}
}

func (p *Profile) DecoderOptions() cipher.DecoderOptions {
	return cipher.DecoderOptions{
		CharWidth: bitcodec.CharWidth(p.CharWidth),
		Bounds:    p.CipherBounds(),
	}
}

func (p *Profile) RecorderOptions(rng cipher.Rand) recorder.Options {
	return recorder.Options{
		LeadInMin: p.LeadIn.Min,
		LeadInMax: p.LeadIn.Max,
		Rand:      rng,
	}
}
