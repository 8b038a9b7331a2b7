// Package config loads the tunable constants around the emulation core:
// clock rates, audio batching, and framebuffer dimensions. None of these
// change simulated-hardware behavior (the core's timing contract is fixed
// by spec); they size buffers and pick host-facing defaults.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds every host-tunable knob the core exposes. The zero value
// is never used directly; call Default() to get a working configuration.
type Config struct {
	// MasterClockHz is the free-running master cycle rate the VDC pixel
	// clock and PSG sample cadence are derived from.
	MasterClockHz uint64 `toml:"master_clock_hz"`

	// CPUDividerLow/CPUDividerHigh hold master-cycles-per-CPU-cycle for
	// CSL (low speed) and CSH (high speed) respectively. No package reads
	// them: the cpu package applies its own fixed divisors (12 and 3).
	CPUDividerLow  uint64 `toml:"cpu_divider_low"`
	CPUDividerHigh uint64 `toml:"cpu_divider_high"`

	// AudioSampleRate is the PSG's output sample rate in Hz.
	AudioSampleRate uint32 `toml:"audio_sample_rate"`

	// AudioChunkSize is how many samples accumulate before
	// take_audio_samples() returns a chunk.
	AudioChunkSize int `toml:"audio_chunk_size"`

	// FrameWidth/FrameHeight size the framebuffer take_frame() returns.
	FrameWidth  int `toml:"frame_width"`
	FrameHeight int `toml:"frame_height"`

	// LogBufferEntries sizes the ambient debug logger's circular buffer.
	LogBufferEntries int `toml:"log_buffer_entries"`
}

// Default returns the configuration this core runs with when no file is
// supplied: NTSC-ish master clock, the two documented CPU speed divisors,
// 44.1kHz audio in 1024-sample chunks, and a 256x240 framebuffer.
func Default() Config {
	return Config{
		MasterClockHz:    21477270,
		CPUDividerLow:    12,
		CPUDividerHigh:   3,
		AudioSampleRate:  44100,
		AudioChunkSize:   1024,
		FrameWidth:       256,
		FrameHeight:      240,
		LogBufferEntries: 10000,
	}
}

// Load reads a TOML file, starting from Default() and overwriting any
// field the file specifies.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %q: %w", path, err)
	}
	return cfg, nil
}
