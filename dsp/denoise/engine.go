package denoise

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-denoise/dsp/core"
)

const (
	// DefaultSampleRate is tuned for narrowband voice/radio audio.
	DefaultSampleRate = 12000.0
	// DefaultFrameSize is the spectral analysis frame length N.
	DefaultFrameSize = 512
	// DefaultHopSize yields 75% frame overlap.
	DefaultHopSize = 128

	minFrameSize = 64

	// Numerical floors shared across the pipeline.
	powerFloor = 1e-10
	epsilon    = 1e-12

	// Makeup gain compensates energy removed by suppression and gating,
	// scaling from 1 at zero strength up to this maximum.
	makeupGainMax = 2.0

	// Soft limiter: excess above the threshold is compressed by the ratio
	// instead of hard-clipping.
	limiterThreshold = 0.9
	limiterRatio     = 0.3

	controlQueueLen = 16

	// One telemetry value per this many processed samples while enabled.
	telemetryInterval = 2048
)

// Telemetry is the metering snapshot emitted at a fixed sub-sampled rate
// while the engine is enabled. Loss of telemetry has no audio effect.
type Telemetry struct {
	// GateReduction is 1 minus the gate multiplier, in [0, 1].
	GateReduction float64
	// Flatness is the smoothed voice-activity score, in [0, 1].
	Flatness float64
}

// Option configures engine construction.
type Option func(*settings)

type settings struct {
	sampleRate float64
	frameSize  int
	hopSize    int
	cfg        Config
	telemetry  chan<- Telemetry
}

// WithSampleRate sets the operating sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(s *settings) {
		s.sampleRate = sampleRate
	}
}

// WithFrameSize sets the analysis frame length N. It must be a power of two
// and a multiple of the hop size.
func WithFrameSize(frameSize int) Option {
	return func(s *settings) {
		s.frameSize = frameSize
	}
}

// WithHopSize sets the sample advance between analysis frames.
func WithHopSize(hopSize int) Option {
	return func(s *settings) {
		s.hopSize = hopSize
	}
}

// WithConfig sets the initial configuration snapshot.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.cfg = cfg
	}
}

// WithTelemetry registers a metering channel. Sends never block; values are
// dropped when the receiver falls behind.
func WithTelemetry(ch chan<- Telemetry) Option {
	return func(s *settings) {
		s.telemetry = ch
	}
}

// Engine is the streaming noise reducer. It is single-threaded by design:
// exactly one goroutine may call Process, and all per-bin state belongs to
// that caller. Control updates cross in through the message queue only.
type Engine struct {
	sampleRate float64
	frameSize  int
	hopSize    int
	numBins    int
	synthScale float64

	cfg  Config
	ctrl chan Message

	in    *sampleRing
	ola   *overlapRing
	count uint64 // total input samples staged

	tf    *transform
	frame []float64
	re    []float64
	im    []float64
	power []float64
	noise []float64
	gains []float64

	flat     *flatnessTracker
	legacy   *legacyEstimator
	advanced *subwindowEstimator
	est      noiseEstimator

	gainCalc *gainCalculator
	smoother *artifactSmoother
	eq       *equalizer
	gate     *voiceGate

	makeup float64

	telemetry      chan<- Telemetry
	sinceTelemetry int
}

// New creates an engine with all buffers allocated up front. The default
// geometry is 512-sample frames with a 128-sample hop at 12 kHz.
func New(opts ...Option) (*Engine, error) {
	s := settings{
		sampleRate: DefaultSampleRate,
		frameSize:  DefaultFrameSize,
		hopSize:    DefaultHopSize,
		cfg:        DefaultConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	if s.sampleRate <= 0 || !core.IsFinite(s.sampleRate) {
		return nil, fmt.Errorf("denoise: sample rate must be positive and finite: %f", s.sampleRate)
	}
	if s.frameSize < minFrameSize || s.frameSize&(s.frameSize-1) != 0 {
		return nil, fmt.Errorf("denoise: frame size must be a power of two >= %d: %d", minFrameSize, s.frameSize)
	}
	if s.hopSize <= 0 || s.hopSize >= s.frameSize || s.frameSize%s.hopSize != 0 {
		return nil, fmt.Errorf("denoise: hop size must divide the frame size and be in [1, %d): %d",
			s.frameSize, s.hopSize)
	}

	tf, err := newTransform(s.frameSize)
	if err != nil {
		return nil, err
	}

	numBins := s.frameSize/2 + 1

	e := &Engine{
		sampleRate: s.sampleRate,
		frameSize:  s.frameSize,
		hopSize:    s.hopSize,
		numBins:    numBins,
		synthScale: float64(s.hopSize) / float64(s.frameSize) * 2,

		ctrl: make(chan Message, controlQueueLen),

		in:  newSampleRing(2 * s.frameSize),
		ola: newOverlapRing(2 * s.frameSize),

		tf:    tf,
		frame: make([]float64, s.frameSize),
		re:    make([]float64, numBins),
		im:    make([]float64, numBins),
		power: make([]float64, numBins),
		noise: make([]float64, numBins),
		gains: make([]float64, numBins),

		flat:     newFlatnessTracker(numBins),
		legacy:   newLegacyEstimator(numBins),
		advanced: newSubwindowEstimator(numBins),

		gainCalc: newGainCalculator(numBins),
		smoother: newArtifactSmoother(numBins),
		eq:       newEqualizer(s.sampleRate, s.frameSize),
		gate:     newVoiceGate(s.sampleRate),

		telemetry: s.telemetry,
	}

	e.cfg = DefaultConfig()
	e.cfg.apply(snapshotMessage(s.cfg))
	e.rebind()

	return e, nil
}

// snapshotMessage converts a full Config into a message so initial values
// pass through the same clamping as control updates. Strength is doubled
// back into the control range first.
func snapshotMessage(cfg Config) Message {
	strength := cfg.Strength * 2

	return Message{
		Enabled:         &cfg.Enabled,
		Strength:        &strength,
		Profile:         &cfg.Profile,
		Estimator:       &cfg.Estimator,
		GainLaw:         &cfg.GainLaw,
		SmootherEnabled: &cfg.SmootherEnabled,
		SmoothingShape:  &cfg.SmoothingShape,
		BiasShape:       &cfg.BiasShape,
		GateDepth:       &cfg.GateDepth,
	}
}

// SampleRate returns the operating sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// FrameSize returns the analysis frame length N.
func (e *Engine) FrameSize() int { return e.frameSize }

// HopSize returns the sample advance between analysis frames.
func (e *Engine) HopSize() int { return e.hopSize }

// NumBins returns the number of unique spectrum bins (N/2 + 1).
func (e *Engine) NumBins() int { return e.numBins }

// Latency returns the fixed delay of the denoised path in samples.
func (e *Engine) Latency() int { return e.frameSize }

// Config returns the active configuration snapshot. It reflects messages
// drained up to the most recent Process call.
func (e *Engine) Config() Config { return e.cfg }

// GateMetrics returns the voice gate's current metering snapshot.
func (e *Engine) GateMetrics() GateMetrics { return e.gate.metrics() }

// Send queues a control update for the next block. It never blocks; the
// return value is false when the queue is full and the message was dropped.
func (e *Engine) Send(m Message) bool {
	select {
	case e.ctrl <- m:
		return true
	default:
		return false
	}
}

// Reset reinitializes every adaptive estimator and the gate to starting
// constants without reallocating memory. Ring contents and the sample
// counter are kept so block-rate delivery is uninterrupted.
func (e *Engine) Reset() {
	e.flat.reset()
	e.legacy.reset()
	e.advanced.reset()
	e.gainCalc.reset()
	e.smoother.reset()
	e.gate.reset()
}

// rebind derives component parameters from the configuration snapshot and
// binds the selected estimator strategy, so the frame loop stays free of
// per-method branching.
func (e *Engine) rebind() {
	if e.cfg.Estimator == EstimatorAdvanced {
		e.est = e.advanced
	} else {
		e.est = e.legacy
	}

	e.advanced.setShape(e.cfg.SmoothingShape, e.cfg.BiasShape)
	e.gainCalc.configure(e.cfg.GainLaw, e.cfg.Strength)
	e.gate.configure(e.cfg.Profile, e.cfg.GateDepth, e.cfg.Strength)
	e.makeup = 1 + e.cfg.Strength*(makeupGainMax-1)
}

// drainControl applies all pending messages atomically before a block.
func (e *Engine) drainControl() {
	changed := false
	reset := false

	for {
		select {
		case m := <-e.ctrl:
			if e.cfg.apply(m) {
				reset = true
			}
			changed = true
		default:
			if reset {
				e.Reset()
			}
			if changed {
				e.rebind()
			}
			return
		}
	}
}

// Process consumes one input block and produces an equal-length output
// block. This is the host audio callback: it never blocks and performs no
// allocation. Block length is arbitrary and may vary between calls.
func (e *Engine) Process(input, output []float64) error {
	if len(input) != len(output) {
		return fmt.Errorf("denoise: block length mismatch: input %d, output %d", len(input), len(output))
	}

	e.drainControl()

	n := uint64(e.frameSize)
	hop := uint64(e.hopSize)

	for i, x := range input {
		e.in.write(x)
		e.count++

		if e.count >= n && (e.count-n)%hop == 0 {
			err := e.processFrame()
			if err != nil {
				return err
			}
		}

		output[i] = e.outputSample(x)
	}

	return nil
}

// ProcessInPlace processes buf as both input and output block.
func (e *Engine) ProcessInPlace(buf []float64) error {
	return e.Process(buf, buf)
}

// processFrame runs the spectral pipeline on the most recent N samples and
// accumulates the synthesized frame into the overlap-add ring.
func (e *Engine) processFrame() error {
	e.in.copyLast(e.frame)

	err := e.tf.analyze(e.frame)
	if err != nil {
		return err
	}

	for k := range e.numBins {
		c := e.tf.freq[k]
		e.re[k] = real(c)
		e.im[k] = imag(c)
	}
	vecmath.Power(e.power, e.re, e.im)

	flatness := e.flat.update(e.power)
	e.gate.observe(flatness, e.hopSize)

	e.est.estimate(e.noise, e.power)
	e.gainCalc.compute(e.gains, e.power, e.noise)

	if e.cfg.SmootherEnabled {
		e.smoother.apply(e.gains)
	}

	curve := e.eq.curve(e.cfg.Profile)
	for k := range e.numBins {
		e.gains[k] *= curve[k]
	}

	e.tf.scaleBins(e.gains)

	err = e.tf.synthesize(e.frame)
	if err != nil {
		return err
	}

	start := int((e.count - uint64(e.frameSize)) % uint64(2*e.frameSize))
	e.ola.addFrame(start, e.frame, e.synthScale)

	return nil
}

// outputSample produces one output sample for the sample just staged.
// The denoised path runs N samples behind the input; the first N samples
// on the enabled path are a verbatim passthrough while the first frame
// fills. The disabled path is always the exact N-sample-delayed input.
func (e *Engine) outputSample(x float64) float64 {
	mult := e.gate.step()

	// Drain unconditionally so stale cells cannot accumulate across
	// enable/disable transitions.
	var ola float64
	if e.count > uint64(e.frameSize) {
		pos := int((e.count - 1 - uint64(e.frameSize)) % uint64(2*e.frameSize))
		ola = e.ola.drain(pos)
	}

	// The current sample is already staged, so the exact N-sample delay is
	// the cell written N+1 steps ago.
	if !e.cfg.Enabled {
		return e.in.read(e.frameSize + 1)
	}

	if e.count <= uint64(e.frameSize) {
		return x
	}

	e.emitTelemetry(mult)

	return softLimit(ola * e.makeup * mult)
}

func (e *Engine) emitTelemetry(mult float64) {
	if e.telemetry == nil {
		return
	}

	e.sinceTelemetry++
	if e.sinceTelemetry < telemetryInterval {
		return
	}
	e.sinceTelemetry = 0

	select {
	case e.telemetry <- Telemetry{GateReduction: 1 - mult, Flatness: e.flat.smoothed}:
	default:
	}
}

// softLimit compresses the excess above the headroom threshold by a fixed
// ratio instead of hard-clipping.
func softLimit(x float64) float64 {
	switch {
	case x > limiterThreshold:
		return limiterThreshold + (x-limiterThreshold)*limiterRatio
	case x < -limiterThreshold:
		return -limiterThreshold + (x+limiterThreshold)*limiterRatio
	default:
		return x
	}
}
