package cipher

import (
	"fmt"
	"strings"
)

// Strategy identifies one embedding scheme. The set is closed; every
// strategy has an entry in the codec table.
type Strategy uint8

const (
	StrategyBitMask Strategy = iota
	StrategyLSBMask
	StrategyFractions
	StrategyHalves
	StrategyDecimalPosition
	StrategyLetterMapping
	StrategyNetworkTest

	strategyCount
)

// SyncKeyLength is the width of a synchronization key: the full bit patterns
// of X followed by Y.
const SyncKeyLength = 64

// syncKeys is the published key table. Keys must be pairwise distinct and
// must not encode NaN patterns, which some transports canonicalize.
var syncKeys = [strategyCount]string{
	StrategyBitMask:         "1011111110010111100111110111100010111111111100101010101100111110",
	StrategyLSBMask:         "1011111110010101100111110111100010111111111100101010101100011010",
	StrategyFractions:       "1011111110010101100111110111100010111111111100101010101101001001",
	StrategyHalves:          "1011111110010101100111110111100010111111111100101010101100101010",
	StrategyDecimalPosition: "1011111110010101100111110111100010111111111100101010101100111000",
	StrategyLetterMapping:   "1011111110010101100111110111100010111111111100101010101100110000",
	StrategyNetworkTest:     "1011111110010101100111110111100010111111111100101010101101111010",
}

var strategyNames = [strategyCount]string{
	StrategyBitMask:         "bitmask",
	StrategyLSBMask:         "lsbmask",
	StrategyFractions:       "fractions",
	StrategyHalves:          "halves",
	StrategyDecimalPosition: "decimalposition",
	StrategyLetterMapping:   "lettermapping",
	StrategyNetworkTest:     "networktest",
}

func (s Strategy) Valid() bool {
	return s < strategyCount
}

func (s Strategy) String() string {
	if !s.Valid() {
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
	return strategyNames[s]
}

// Bounded reports whether the strategy declares a message length, that is
// whether its decoder can ever complete.
func (s Strategy) Bounded() bool {
	return s.Valid() && !codecs[s].unbounded
}

// SyncKey returns the 64 bit synchronization key of the strategy.
func (s Strategy) SyncKey() string {
	if !s.Valid() {
		return ""
	}
	return syncKeys[s]
}

// Strategies lists every registered strategy.
func Strategies() []Strategy {
	out := make([]Strategy, 0, strategyCount)
	for s := Strategy(0); s < strategyCount; s++ {
		out = append(out, s)
	}
	return out
}

// ErrUnknownStrategy is returned for names or values outside the strategy set.
type ErrUnknownStrategy struct {
	Name string
}

func (e *ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("unknown strategy: %s", e.Name)
}

func IsUnknownStrategy(err error) bool {
	_, ok := err.(*ErrUnknownStrategy)
	return ok
}

// ParseStrategy parses a strategy name, ignoring case, dashes and underscores.
func ParseStrategy(name string) (Strategy, error) {
	normalized := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	for s, n := range strategyNames {
		if n == normalized {
			return Strategy(s), nil
		}
	}
	return 0, &ErrUnknownStrategy{Name: name}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, &ErrUnknownStrategy{Name: s.String()}
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
