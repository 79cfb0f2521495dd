package recorder

import (
	"math"

	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/kinematic"
)

const (
	minMoveFrames  = 12
	maxMoveFrames  = 48
	clickFrames    = 3
	pathEdgeMargin = 8
)

// Path generates n frames of a cursor gliding between random targets inside
// bounds, clicking briefly at each target.
func Path(n int, bounds cipher.Bounds, rng cipher.Rand) []cipher.Frame {
	frames := make([]cipher.Frame, 0, n)
	from := randomTarget(bounds, rng)
	for len(frames) < n {
		to := randomTarget(bounds, rng)
		duration := float64(minMoveFrames + rng.Intn(maxMoveFrames-minMoveFrames))
		dx := float64(to.X - from.X)
		dy := float64(to.Y - from.Y)
		for t := 1.0; t <= duration && len(frames) < n; t++ {
			p := cipher.Position{
				X: from.X + float32(kinematic.EasedDisplacement(dx, duration, t)),
				Y: from.Y + float32(kinematic.EasedDisplacement(dy, duration, t)),
			}
			frames = append(frames, cipher.Frame{Position: clamp(p, bounds)})
		}
		for i := 0; i < clickFrames && len(frames) < n; i++ {
			frames = append(frames, cipher.Frame{Position: to, ActionsPressed: true})
		}
		from = to
	}
	return frames
}

func randomTarget(bounds cipher.Bounds, rng cipher.Rand) cipher.Position {
	return cipher.Position{
		X: randomCoordinate(bounds.Width, rng),
		Y: randomCoordinate(bounds.Height, rng),
	}
}

// randomCoordinate returns a value with a non-trivial fraction inside
// [margin, limit-margin).
func randomCoordinate(limit float32, rng cipher.Rand) float32 {
	span := int(limit) - 2*pathEdgeMargin
	if span < 1 {
		return 0
	}
	whole := pathEdgeMargin + rng.Intn(span)
	return float32(whole) + float32(rng.Intn(1000))/1000
}

func clamp(p cipher.Position, bounds cipher.Bounds) cipher.Position {
	p.X = float32(math.Max(0, math.Min(float64(p.X), float64(bounds.Width)-1)))
	p.Y = float32(math.Max(0, math.Min(float64(p.Y), float64(bounds.Height)-1)))
	return p
}
