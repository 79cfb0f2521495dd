package replay

import (
	"bytes"
	"fmt"
	"io"

	replayfb "github.com/cbodonnell/replaycipher/flatbuffers/replay"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// MaxDecodedSize bounds the decompressed size of a replay or bundle.
const MaxDecodedSize = 64 << 20

func compress(b []byte) ([]byte, error) {
	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}
	return compressed.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	compReader, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(MaxDecodedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()
	b, err := io.ReadAll(io.LimitReader(compReader, MaxDecodedSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed data: %v", err)
	}
	if len(b) > MaxDecodedSize {
		return nil, fmt.Errorf("decompressed data exceeds %d bytes", MaxDecodedSize)
	}
	return b, nil
}

// SerializeReplay encodes a replay as a compressed flatbuffer.
func SerializeReplay(r *Replay) ([]byte, error) {
	b, err := SerializeReplayFlatbuffer(r)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize replay: %v", err)
	}
	return compress(b)
}

func DeserializeReplay(data []byte) (*Replay, error) {
	b, err := decompress(data)
	if err != nil {
		return nil, err
	}
	r, err := DeserializeReplayFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize replay: %v", err)
	}
	return r, nil
}

// SerializeBundle encodes a bundle of streamed frames as a compressed flatbuffer.
func SerializeBundle(bundle *Bundle) ([]byte, error) {
	b, err := SerializeBundleFlatbuffer(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize bundle: %v", err)
	}
	return compress(b)
}

func DeserializeBundle(data []byte) (*Bundle, error) {
	b, err := decompress(data)
	if err != nil {
		return nil, err
	}
	bundle, err := DeserializeBundleFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize bundle: %v", err)
	}
	return bundle, nil
}

// SerializeFrames encodes bare frames as a bundle without a stream.
func SerializeFrames(frames []cipher.Frame) ([]byte, error) {
	return SerializeBundle(&Bundle{Frames: frames})
}

func DeserializeFrames(data []byte) ([]cipher.Frame, error) {
	bundle, err := DeserializeBundle(data)
	if err != nil {
		return nil, err
	}
	return bundle.Frames, nil
}

func SerializeReplayFlatbuffer(r *Replay) ([]byte, error) {
	builder := flatbuffers.NewBuilder(1024)

	id := builder.CreateByteVector(r.ID[:])
	strategy := builder.CreateString(r.Strategy)
	replayfb.ReplayStartFramesVector(builder, len(r.Frames))
	frames := prependFrames(builder, r.Frames)

	replayfb.ReplayStart(builder)
	replayfb.ReplayAddId(builder, id)
	replayfb.ReplayAddStrategy(builder, strategy)
	replayfb.ReplayAddFrames(builder, frames)
	replayOffset := replayfb.ReplayEnd(builder)
	replayfb.FinishReplayBuffer(builder, replayOffset)

	return builder.FinishedBytes(), nil
}

func DeserializeReplayFlatbuffer(b []byte) (r *Replay, err error) {
	defer recoverMalformed(&err)
	if err := checkRoot(b); err != nil {
		return nil, err
	}

	fb := replayfb.GetRootAsReplay(b, 0)
	id, err := uuid.FromBytes(fb.IdBytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse replay id: %v", err)
	}
	frames, err := readFrames(fb.FramesLength(), fb.Frames)
	if err != nil {
		return nil, err
	}

	return &Replay{
		ID:       id,
		Strategy: string(fb.Strategy()),
		Frames:   frames,
	}, nil
}

func SerializeBundleFlatbuffer(bundle *Bundle) ([]byte, error) {
	builder := flatbuffers.NewBuilder(1024)

	streamID := builder.CreateByteVector(bundle.StreamID[:])
	replayfb.FrameBundleStartFramesVector(builder, len(bundle.Frames))
	frames := prependFrames(builder, bundle.Frames)

	replayfb.FrameBundleStart(builder)
	replayfb.FrameBundleAddStreamId(builder, streamID)
	replayfb.FrameBundleAddSequence(builder, bundle.Sequence)
	replayfb.FrameBundleAddFrames(builder, frames)
	bundleOffset := replayfb.FrameBundleEnd(builder)
	replayfb.FinishFrameBundleBuffer(builder, bundleOffset)

	return builder.FinishedBytes(), nil
}

func DeserializeBundleFlatbuffer(b []byte) (bundle *Bundle, err error) {
	defer recoverMalformed(&err)
	if err := checkRoot(b); err != nil {
		return nil, err
	}

	fb := replayfb.GetRootAsFrameBundle(b, 0)
	streamID, err := uuid.FromBytes(fb.StreamIdBytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse stream id: %v", err)
	}
	frames, err := readFrames(fb.FramesLength(), fb.Frames)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		StreamID: streamID,
		Sequence: fb.Sequence(),
		Frames:   frames,
	}, nil
}

// prependFrames fills a started struct vector. Structs are prepended, so the
// last frame goes first.
func prependFrames(builder *flatbuffers.Builder, frames []cipher.Frame) flatbuffers.UOffsetT {
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		replayfb.CreateFrame(builder, f.Position.X, f.Position.Y, f.ActionsPressed)
	}
	return builder.EndVector(len(frames))
}

func readFrames(n int, get func(obj *replayfb.Frame, j int) bool) ([]cipher.Frame, error) {
	// n comes from the buffer and is not trusted for preallocation.
	frames := make([]cipher.Frame, 0, min(n, 4096))
	frame := &replayfb.Frame{}
	for i := 0; i < n; i++ {
		if !get(frame, i) {
			return nil, fmt.Errorf("failed to get frame at index %d", i)
		}
		frames = append(frames, cipher.Frame{
			Position:       cipher.Position{X: frame.X(), Y: frame.Y()},
			ActionsPressed: frame.Pressed(),
		})
	}
	return frames, nil
}

func checkRoot(b []byte) error {
	if len(b) < flatbuffers.SizeUOffsetT {
		return fmt.Errorf("buffer too short: %d bytes", len(b))
	}
	return nil
}

// recoverMalformed turns an out of range read on a corrupt buffer into an error.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed flatbuffer: %v", r)
	}
}
