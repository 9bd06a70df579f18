// Package denoise implements a streaming single-channel spectral noise
// reducer for narrowband voice and radio audio.
//
// The engine is block-synchronous: the host calls [Engine.Process] once per
// audio callback with a block of input samples and receives an equal-length
// block of output samples. Internally it runs an overlap-add STFT pipeline
// (Hann analysis window, 75% overlap by default) with an adaptive per-bin
// noise-floor estimate, a selectable spectral gain law, an inter-bin gain
// smoother, a static listening-profile equalizer, and a hysteretic
// voice-activity gate with makeup gain and soft limiting.
//
// All state is allocated at construction. The hot path performs no
// allocation and never blocks; configuration updates are delivered through
// [Engine.Send] and applied atomically at the start of the next block.
package denoise
