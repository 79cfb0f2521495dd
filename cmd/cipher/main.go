package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/config"
	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/network"
	"github.com/cbodonnell/replaycipher/pkg/recorder"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/cbodonnell/replaycipher/pkg/version"
	"github.com/google/uuid"
)

const usage = `usage: cipher <command> [flags]

commands:
  encode   hide a message in a synthetic cursor replay
  decode   recover the message from a replay
  stream   send a replay to a server as a live stream
  keys     print the synchronization key table
  profile  print the default strategy profile
  version  print the version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "stream":
		err = runStream(os.Args[2:])
	case "keys":
		runKeys()
	case "profile":
		err = runProfile()
	case "version":
		fmt.Println(version.Get())
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error("%s failed: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func setupLogger(level string) error {
	parsedLogLevel, err := log.ParseLogLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	log.SetDefaultLogger(log.New(os.Stderr, "", log.DefaultLoggerFlag, parsedLogLevel))
	return nil
}

func loadProfile(path string) (*config.Profile, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	profilePath := fs.String("profile", "", "Strategy profile (defaults apply when empty)")
	strategyName := fs.String("strategy", "", "Strategy, overriding the profile")
	message := fs.String("message", "", "Message to hide")
	frames := fs.Int("frames", 3000, "Number of cursor frames after the lead-in")
	out := fs.String("out", "replay.bin", "Output replay file")
	logLevel := fs.String("log-level", "info", "Log level")
	fs.Parse(args)

	if err := setupLogger(*logLevel); err != nil {
		return err
	}
	profile, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}
	if *strategyName != "" {
		if profile.Strategy, err = cipher.ParseStrategy(*strategyName); err != nil {
			return err
		}
		if err := profile.Validate(); err != nil {
			return err
		}
	}

	rng := profile.Rand()
	encoder := cipher.NewEncoder(profile.Strategy, profile.EncoderOptions(rng))
	bits := bitstream.New(*message, bitcodec.CharWidth(profile.CharWidth))
	rec := recorder.New(encoder, bits, profile.RecorderOptions(rng))

	path := recorder.Path(rec.LeadIn()+*frames, profile.CipherBounds(), rng)
	if err := rec.RecordAll(path); err != nil {
		return err
	}
	if profile.Strategy != cipher.StrategyNetworkTest && !rec.Done() {
		return fmt.Errorf("message did not fit in %d frames; raise -frames", *frames)
	}

	r := replay.New(profile.Strategy.String(), rec.Frames())
	if err := replay.WriteFile(*out, r); err != nil {
		return err
	}
	log.Info("Wrote replay %s with %d frames to %s", r.ID, len(r.Frames), *out)
	return nil
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	profilePath := fs.String("profile", "", "Strategy profile for character width and bounds")
	in := fs.String("in", "replay.bin", "Input replay file")
	logLevel := fs.String("log-level", "info", "Log level")
	fs.Parse(args)

	if err := setupLogger(*logLevel); err != nil {
		return err
	}
	profile, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}
	r, err := replay.ReadFile(*in)
	if err != nil {
		return err
	}

	selector := cipher.NewSelector(profile.DecoderOptions())
	strategy, message, err := selector.Decode(r.Frames)
	if errors.Is(err, cipher.ErrNoSyncFrame) {
		return err
	}
	if err != nil {
		log.Warn("Replay decoded with errors: %v", err)
	}
	log.Info("Replay %s uses %s", r.ID, strategy)
	fmt.Println(message)
	return nil
}

func runStream(args []string) error {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	server := fs.String("server", "ws://localhost:8889", "WebSocket server base URL")
	in := fs.String("in", "replay.bin", "Input replay file")
	bundleSize := fs.Int("bundle-size", 60, "Frames per bundle")
	interval := fs.Duration("interval", time.Second, "Delay between bundles")
	logLevel := fs.String("log-level", "info", "Log level")
	fs.Parse(args)

	if err := setupLogger(*logLevel); err != nil {
		return err
	}
	if *bundleSize < 1 {
		return fmt.Errorf("bundle size must be positive")
	}
	r, err := replay.ReadFile(*in)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := network.NewWSClient(*server, uuid.New())
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()
	log.Info("Streaming replay %s as stream %s", r.ID, client.StreamID())

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for start := 0; start < len(r.Frames); start += *bundleSize {
		end := min(start+*bundleSize, len(r.Frames))
		if err := client.SendFrames(ctx, r.Frames[start:end]); err != nil {
			return err
		}
		if end < len(r.Frames) {
			<-ticker.C
		}
	}
	log.Info("Streamed %d frames", len(r.Frames))
	return nil
}

func runKeys() {
	for _, s := range cipher.Strategies() {
		fmt.Printf("%-16s %s\n", s, s.SyncKey())
	}
}

func runProfile() error {
	b, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(b))
	return nil
}
