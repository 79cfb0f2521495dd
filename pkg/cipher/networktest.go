package cipher

import (
	"fmt"
	"strconv"

	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/floatbits"
)

// networkTestCounterModulo wraps the frame counter to its fixed width.
const networkTestCounterModulo = 10000

func encodeNetworkTestHeader(_ *Encoder, p *Position, _ *bitstream.BitStream) error {
	return writeMantissaValue(&p.X, NetworkTestCounterDigits)
}

func decodeNetworkTestHeader(d *Decoder, p Position) error {
	digits := readMantissaValue(p.X)
	if digits < 1 || digits > floatbits.MaxFractionDigits {
		d.counterDigits = NetworkTestCounterDigits
		return &floatbits.ErrInvalidArgument{
			Op:     "NetworkTest",
			Reason: fmt.Sprintf("counter width %d outside 1..%d", digits, floatbits.MaxFractionDigits),
		}
	}
	d.counterDigits = digits
	return nil
}

// encodeNetworkTestPayload stamps every frame with an incrementing counter in
// the X fraction, regardless of the message.
func encodeNetworkTestPayload(e *Encoder, p *Position, _ bool, _ *bitstream.BitStream) error {
	counter := e.counter % networkTestCounterModulo
	e.counter++
	return floatbits.ReplaceFraction(&p.X, fmt.Sprintf("%0*d", NetworkTestCounterDigits, counter))
}

func decodeNetworkTestPayload(d *Decoder, frame Frame) error {
	fraction, err := floatbits.GetFraction(frame.Position.X, d.counterDigits)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(fraction)
	if err != nil {
		return err
	}
	d.indexes = append(d.indexes, index)
	return nil
}
