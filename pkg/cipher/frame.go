package cipher

import "github.com/cbodonnell/replaycipher/pkg/floatbits"

// Default playfield size in cursor coordinates.
const (
	DefaultPlayfieldWidth  = 512
	DefaultPlayfieldHeight = 384
)

type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Frame is one recorded cursor sample. Frames are produced in order and are
// never mutated once recorded.
type Frame struct {
	Position       Position `json:"position"`
	ActionsPressed bool     `json:"actionsPressed"`
}

// SyncKey returns the full bit patterns of X and Y, the value compared against
// the synchronization key table.
func (p Position) SyncKey() string {
	return floatbits.GetFullBits(p.X) + floatbits.GetFullBits(p.Y)
}

// Bounds is the visible area, half open: [0,Width) x [0,Height).
type Bounds struct {
	Width  float32 `json:"width" yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

func DefaultBounds() Bounds {
	return Bounds{Width: DefaultPlayfieldWidth, Height: DefaultPlayfieldHeight}
}

func (b Bounds) Contains(p Position) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// IsGoodFrame reports whether a frame may carry data for strategies that
// avoid visually disruptive frames: inside the bounds and no action pressed.
func (b Bounds) IsGoodFrame(p Position, actionsPressed bool) bool {
	return !actionsPressed && b.Contains(p)
}
