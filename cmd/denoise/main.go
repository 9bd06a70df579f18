// Command denoise runs the streaming spectral noise reducer over raw mono
// PCM audio.
//
// Usage:
//
//	denoise [flags] [input [output]]
//
// Input and output are raw headerless PCM files; "-" or a missing argument
// selects stdin/stdout. Sample format is little-endian float32 by default.
//
// Examples:
//
//	denoise -rate 12000 noisy.raw clean.raw
//	denoise -format i16 -strength 1.5 -profile clarity noisy.raw clean.raw
//	denoise -selftest 5 -telemetry clean.raw
//	cat noisy.raw | denoise -law power - - > clean.raw
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-denoise/dsp/denoise"
	"github.com/cwbudde/algo-denoise/dsp/signal"
)

const blockSize = 1024

func main() {
	rate := flag.Float64("rate", denoise.DefaultSampleRate, "sample rate in Hz")
	frame := flag.Int("frame", denoise.DefaultFrameSize, "analysis frame length (power of two)")
	hop := flag.Int("hop", denoise.DefaultHopSize, "hop size between analysis frames")
	strength := flag.Float64("strength", 1, "effect strength, 0..2")
	profile := flag.String("profile", "plain", "listening profile: plain, clarity")
	law := flag.String("law", "logarithmic", "gain law: linear, logarithmic, power")
	estimator := flag.String("estimator", "legacy", "noise estimator: legacy, advanced")
	smoother := flag.Bool("smoother", true, "enable the inter-bin artifact smoother")
	smoothingShape := flag.Float64("smoothing-shape", 0, "advanced estimator smoothing shape, -2..2")
	biasShape := flag.Float64("bias-shape", 0.5, "advanced estimator bias shape, 0..1")
	gateDepth := flag.Float64("gate-depth", 1, "voice gate depth, 0..1 (0 disables gating)")
	format := flag.String("format", "f32", "sample format: f32 (little-endian float32), i16")
	selftest := flag.Float64("selftest", 0, "ignore input and synthesize this many seconds of tone in noise")
	telemetry := flag.Bool("telemetry", false, "print telemetry lines to stderr while processing")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: denoise [flags] [input [output]]\n\n")
		fmt.Fprintf(os.Stderr, "Reduces broadband noise in raw mono PCM audio.\n")
		fmt.Fprintf(os.Stderr, "Input/output default to stdin/stdout; \"-\" selects them explicitly.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  denoise -rate 12000 noisy.raw clean.raw\n")
		fmt.Fprintf(os.Stderr, "  denoise -format i16 -strength 1.5 -profile clarity noisy.raw clean.raw\n")
		fmt.Fprintf(os.Stderr, "  denoise -selftest 5 -telemetry clean.raw\n")
	}
	flag.Parse()

	cfg := denoise.DefaultConfig()
	cfg.Strength = *strength / 2
	cfg.SmootherEnabled = *smoother
	cfg.SmoothingShape = *smoothingShape
	cfg.BiasShape = *biasShape
	cfg.GateDepth = *gateDepth

	var err error
	cfg.Profile, err = parseProfile(*profile)
	if err == nil {
		cfg.GainLaw, err = parseGainLaw(*law)
	}
	if err == nil {
		cfg.Estimator, err = parseEstimator(*estimator)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	codec, err := parseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var telemetryCh chan denoise.Telemetry
	opts := []denoise.Option{
		denoise.WithSampleRate(*rate),
		denoise.WithFrameSize(*frame),
		denoise.WithHopSize(*hop),
		denoise.WithConfig(cfg),
	}
	if *telemetry {
		telemetryCh = make(chan denoise.Telemetry, 64)
		opts = append(opts, denoise.WithTelemetry(telemetryCh))
	}

	engine, err := denoise.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	inPath, outPath := pickPaths(flag.Args(), *selftest > 0)

	src, closeSrc, err := openInput(inPath, *selftest, *rate, codec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeSrc()

	dst, closeDst, err := openOutput(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	stats, err := run(engine, src, dst, codec, telemetryCh)
	if err == nil {
		err = closeDst()
	} else {
		_ = closeDst()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printSummary(engine, stats)
}

// pickPaths resolves positional arguments to input and output paths. In
// self-test mode input is synthesized, so a single argument names the output.
func pickPaths(args []string, synthetic bool) (in, out string) {
	in, out = "-", "-"
	switch {
	case synthetic && len(args) >= 1:
		out = args[0]
	case len(args) >= 2:
		in, out = args[0], args[1]
	case len(args) == 1:
		in = args[0]
	}
	return in, out
}

func parseProfile(s string) (denoise.Profile, error) {
	switch s {
	case "plain":
		return denoise.ProfilePlain, nil
	case "clarity":
		return denoise.ProfileClarity, nil
	default:
		return 0, fmt.Errorf("unknown profile %q (plain, clarity)", s)
	}
}

func parseGainLaw(s string) (denoise.GainLaw, error) {
	switch s {
	case "linear":
		return denoise.GainLawLinear, nil
	case "logarithmic", "log":
		return denoise.GainLawLogarithmic, nil
	case "power":
		return denoise.GainLawPower, nil
	default:
		return 0, fmt.Errorf("unknown gain law %q (linear, logarithmic, power)", s)
	}
}

func parseEstimator(s string) (denoise.EstimatorMethod, error) {
	switch s {
	case "legacy":
		return denoise.EstimatorLegacy, nil
	case "advanced":
		return denoise.EstimatorAdvanced, nil
	default:
		return 0, fmt.Errorf("unknown estimator %q (legacy, advanced)", s)
	}
}

// sampleCodec converts between raw PCM bytes and float64 samples.
type sampleCodec struct {
	name  string
	width int
	read  func(b []byte) float64
	write func(b []byte, v float64)
}

func parseFormat(s string) (sampleCodec, error) {
	switch s {
	case "f32":
		return sampleCodec{
			name:  "f32",
			width: 4,
			read: func(b []byte) float64 {
				return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			},
			write: func(b []byte, v float64) {
				binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
			},
		}, nil
	case "i16":
		return sampleCodec{
			name:  "i16",
			width: 2,
			read: func(b []byte) float64 {
				return float64(int16(binary.LittleEndian.Uint16(b))) / 32768
			},
			write: func(b []byte, v float64) {
				scaled := math.Round(v * 32767)
				if scaled > 32767 {
					scaled = 32767
				} else if scaled < -32768 {
					scaled = -32768
				}
				binary.LittleEndian.PutUint16(b, uint16(int16(scaled)))
			},
		}, nil
	default:
		return sampleCodec{}, fmt.Errorf("unknown sample format %q (f32, i16)", s)
	}
}

// sampleSource yields blocks of samples until exhaustion.
type sampleSource interface {
	next(dst []float64) (int, error)
}

// pcmSource decodes raw PCM from a reader.
type pcmSource struct {
	r     *bufio.Reader
	codec sampleCodec
	buf   []byte
}

func (s *pcmSource) next(dst []float64) (int, error) {
	want := len(dst) * s.codec.width
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	raw := s.buf[:want]

	n, err := io.ReadFull(s.r, raw)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}
	n -= n % s.codec.width

	for i := 0; i < n; i += s.codec.width {
		dst[i/s.codec.width] = s.codec.read(raw[i:])
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n / s.codec.width, nil
}

// syntheticSource yields a pre-generated probe signal.
type syntheticSource struct {
	data []float64
	pos  int
}

func (s *syntheticSource) next(dst []float64) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(dst, s.data[s.pos:])
	s.pos += n
	return n, nil
}

func openInput(path string, selftest, rate float64, codec sampleCodec) (sampleSource, func(), error) {
	if selftest > 0 {
		samples := int(selftest * rate)
		data, err := signal.ToneInNoise(1000, rate, 0.5, 0.25, 1, samples)
		if err != nil {
			return nil, nil, err
		}
		return &syntheticSource{data: data}, func() {}, nil
	}

	if path == "-" {
		return &pcmSource{r: bufio.NewReader(os.Stdin), codec: codec}, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return &pcmSource{r: bufio.NewReader(f), codec: codec}, func() { _ = f.Close() }, nil
}

func openOutput(path string) (*bufio.Writer, func() error, error) {
	if path == "-" {
		w := bufio.NewWriter(os.Stdout)
		return w, w.Flush, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}, nil
}

type runStats struct {
	samples   int
	inEnergy  float64
	outEnergy float64
	outPeak   float64
}

func run(engine *denoise.Engine, src sampleSource, dst *bufio.Writer, codec sampleCodec, telemetryCh <-chan denoise.Telemetry) (runStats, error) {
	var stats runStats

	in := make([]float64, blockSize)
	out := make([]float64, blockSize)
	raw := make([]byte, blockSize*codec.width)

	for {
		n, err := src.next(in)
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}

		if err := engine.Process(in[:n], out[:n]); err != nil {
			return stats, err
		}

		for i, v := range out[:n] {
			codec.write(raw[i*codec.width:], v)
			stats.inEnergy += in[i] * in[i]
			stats.outEnergy += v * v
			if a := math.Abs(v); a > stats.outPeak {
				stats.outPeak = a
			}
		}
		stats.samples += n

		if _, err := dst.Write(raw[:n*codec.width]); err != nil {
			return stats, err
		}

		drainTelemetry(telemetryCh)
	}
}

func drainTelemetry(ch <-chan denoise.Telemetry) {
	if ch == nil {
		return
	}
	for {
		select {
		case tel := <-ch:
			fmt.Fprintf(os.Stderr, "telemetry: flatness=%.3f gate-reduction=%.3f\n",
				tel.Flatness, tel.GateReduction)
		default:
			return
		}
	}
}

func printSummary(engine *denoise.Engine, stats runStats) {
	rms := func(energy float64) float64 {
		if stats.samples == 0 {
			return 0
		}
		return math.Sqrt(energy / float64(stats.samples))
	}

	gate := engine.GateMetrics()
	gateState := "closed"
	if gate.Open {
		gateState = "open"
	}

	tw := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "samples\t%d\n", stats.samples)
	fmt.Fprintf(tw, "duration\t%.2f s\n", float64(stats.samples)/engine.SampleRate())
	fmt.Fprintf(tw, "latency\t%d samples\n", engine.Latency())
	fmt.Fprintf(tw, "input RMS\t%.4f\n", rms(stats.inEnergy))
	fmt.Fprintf(tw, "output RMS\t%.4f\n", rms(stats.outEnergy))
	fmt.Fprintf(tw, "output peak\t%.4f\n", stats.outPeak)
	fmt.Fprintf(tw, "gate\t%s (x%.2f)\n", gateState, gate.Multiplier)
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush summary: %v\n", err)
	}
}
