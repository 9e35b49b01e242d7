// Package config loads the bridge's JSON configuration file. It follows
// the defaults-then-override-then-validate shape of the reference
// bridge's YAML loader (bridge/config.go), ported to JSON per the wire
// contract here — no YAML-specific library in the example pack covers
// this format, and the configuration keys are simple enough that
// encoding/json plus field-by-field validation needs no schema library.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"usrpdmr/internal/dsp"
	"usrpdmr/internal/errkind"
	"usrpdmr/internal/interlock"
	"usrpdmr/internal/jitter"
	"usrpdmr/internal/stats"
	"usrpdmr/internal/vox"
)

// Config is the fully resolved, validated runtime configuration.
type Config struct {
	USRP       USRPConfig
	USRPClient USRPClientConfig
	MMDVM      MMDVMConfig
	MMDVMRx    MMDVMRxConfig
	Audio      AudioConfig
	VOX        vox.Config
	Jitter     jitter.Config
	Interlock  interlock.Config
	Processing ProcessingConfig
}

type USRPConfig struct {
	ListenAddress string
	ListenPort    int
	BufferSize    int
}

type USRPClientConfig struct {
	TargetAddress string
	TargetPort    int
}

type MMDVMConfig struct {
	Address    string
	Port       int
	BufferSize int
}

type MMDVMRxConfig struct {
	ListenAddress string
	RxPort        int
}

type AudioConfig struct {
	SampleRate     int
	Channels       int
	Gain           float64
	GainMin        float64
	GainMax        float64
	EnableAGC      bool
	AGCThresholdDb float64
}

type ProcessingConfig struct {
	EnableInterceptionPipe bool
}

// fileSchema is the on-disk JSON shape, nested by section per §6.
type fileSchema struct {
	USRP struct {
		ListenAddress string `json:"listen_address"`
		ListenPort    int    `json:"listen_port"`
		BufferSize    int    `json:"buffer_size"`
	} `json:"usrp"`
	USRPClient struct {
		TargetAddress string `json:"target_address"`
		TargetPort    int    `json:"target_port"`
	} `json:"usrp_client"`
	MMDVM struct {
		Address    string `json:"address"`
		Port       int    `json:"port"`
		BufferSize int    `json:"buffer_size"`
	} `json:"mmdvm"`
	MMDVMRx struct {
		ListenAddress string `json:"listen_address"`
		RxPort        int    `json:"rx_port"`
	} `json:"mmdvm_rx"`
	Audio struct {
		SampleRate     int     `json:"sample_rate"`
		Channels       int     `json:"channels"`
		Gain           float64 `json:"gain"`
		GainMin        float64 `json:"gain_min"`
		GainMax        float64 `json:"gain_max"`
		EnableAGC      bool    `json:"enable_agc"`
		AGCThresholdDb float64 `json:"agc_threshold_db"`
	} `json:"audio"`
	VOX struct {
		Threshold     float64 `json:"threshold"`
		HangtimeMs    int64   `json:"hangtime_ms"`
		HardTimeoutMs int64   `json:"hard_timeout_ms"`
	} `json:"vox"`
	JitterBuffer struct {
		FrameTimeMs int `json:"frame_time_ms"`
		BufferSize  int `json:"buffer_size"`
	} `json:"jitter_buffer"`
	EchoInterlock struct {
		Enable      bool    `json:"enable"`
		RxTimeoutMs int64   `json:"rx_timeout_ms"`
		TxMuteGain  float64 `json:"tx_mute_gain"`
	} `json:"echo_interlock"`
	Processing struct {
		EnableInterceptionPipe bool `json:"enable_interception_pipe"`
	} `json:"processing"`
}

// defaults returns a Config pre-populated with every §6-documented
// default, before the on-disk file overrides anything it specifies.
func defaults() Config {
	return Config{
		USRP: USRPConfig{
			ListenAddress: "0.0.0.0",
			ListenPort:    40001,
			BufferSize:    65536,
		},
		USRPClient: USRPClientConfig{
			TargetAddress: "127.0.0.1",
			TargetPort:    40001,
		},
		MMDVM: MMDVMConfig{
			Address:    "127.0.0.1",
			Port:       33100,
			BufferSize: 65536,
		},
		MMDVMRx: MMDVMRxConfig{
			ListenAddress: "0.0.0.0",
			RxPort:        33101,
		},
		Audio: AudioConfig{
			SampleRate:     8000,
			Channels:       1,
			Gain:           1.0,
			GainMin:        0.0,
			GainMax:        10.0,
			EnableAGC:      false,
			AGCThresholdDb: -20,
		},
		VOX:       vox.DefaultConfig(),
		Jitter:    jitter.DefaultConfig(),
		Interlock: interlock.DefaultConfig(),
		Processing: ProcessingConfig{
			EnableInterceptionPipe: false,
		},
	}
}

// Load reads and validates the JSON configuration file at path. Missing
// optional keys fall back to the defaults listed in §6; a missing
// required key (the address of each of the four UDP endpoints:
// usrp.listen_address, usrp_client.target_address, mmdvm.address,
// mmdvm_rx.listen_address) is a fatal Configuration error.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: config: failed to read %s: %w", errkind.ErrConfiguration, path, err)
	}

	var fs fileSchema
	if err := json.Unmarshal(data, &fs); err != nil {
		return Config{}, fmt.Errorf("%w: config: failed to parse %s: %w", errkind.ErrConfiguration, path, err)
	}

	if fs.USRP.ListenAddress == "" {
		return Config{}, errkind.Wrap(errkind.Configuration, "usrp.listen_address is required")
	}
	cfg.USRP.ListenAddress = fs.USRP.ListenAddress
	if fs.USRP.ListenPort != 0 {
		cfg.USRP.ListenPort = fs.USRP.ListenPort
	}
	if fs.USRP.BufferSize != 0 {
		cfg.USRP.BufferSize = fs.USRP.BufferSize
	}

	if fs.USRPClient.TargetAddress == "" {
		return Config{}, errkind.Wrap(errkind.Configuration, "usrp_client.target_address is required")
	}
	cfg.USRPClient.TargetAddress = fs.USRPClient.TargetAddress
	if fs.USRPClient.TargetPort != 0 {
		cfg.USRPClient.TargetPort = fs.USRPClient.TargetPort
	}

	if fs.MMDVM.Address == "" {
		return Config{}, errkind.Wrap(errkind.Configuration, "mmdvm.address is required")
	}
	cfg.MMDVM.Address = fs.MMDVM.Address
	if fs.MMDVM.Port != 0 {
		cfg.MMDVM.Port = fs.MMDVM.Port
	}
	if fs.MMDVM.BufferSize != 0 {
		cfg.MMDVM.BufferSize = fs.MMDVM.BufferSize
	}

	if fs.MMDVMRx.ListenAddress == "" {
		return Config{}, errkind.Wrap(errkind.Configuration, "mmdvm_rx.listen_address is required")
	}
	cfg.MMDVMRx.ListenAddress = fs.MMDVMRx.ListenAddress
	if fs.MMDVMRx.RxPort != 0 {
		cfg.MMDVMRx.RxPort = fs.MMDVMRx.RxPort
	}

	if fs.Audio.SampleRate != 0 {
		cfg.Audio.SampleRate = fs.Audio.SampleRate
	}
	if fs.Audio.Channels != 0 {
		cfg.Audio.Channels = fs.Audio.Channels
	}
	if fs.Audio.Gain != 0 {
		cfg.Audio.Gain = fs.Audio.Gain
	}
	if fs.Audio.GainMax != 0 {
		cfg.Audio.GainMax = fs.Audio.GainMax
	}
	cfg.Audio.GainMin = fs.Audio.GainMin
	cfg.Audio.EnableAGC = fs.Audio.EnableAGC
	if fs.Audio.AGCThresholdDb != 0 {
		cfg.Audio.AGCThresholdDb = fs.Audio.AGCThresholdDb
	}

	if fs.VOX.Threshold != 0 {
		cfg.VOX.Threshold = fs.VOX.Threshold
	}
	if fs.VOX.HangtimeMs != 0 {
		cfg.VOX.HangtimeMs = fs.VOX.HangtimeMs
	}
	if fs.VOX.HardTimeoutMs != 0 {
		cfg.VOX.HardTimeoutMs = fs.VOX.HardTimeoutMs
	}

	if fs.JitterBuffer.FrameTimeMs != 0 {
		cfg.Jitter.FrameTimeMs = fs.JitterBuffer.FrameTimeMs
	}
	if fs.JitterBuffer.BufferSize != 0 {
		cfg.Jitter.TargetDepth = fs.JitterBuffer.BufferSize
	}

	cfg.Interlock.Enable = fs.EchoInterlock.Enable
	if fs.EchoInterlock.RxTimeoutMs != 0 {
		cfg.Interlock.RxTimeoutMs = fs.EchoInterlock.RxTimeoutMs
	}
	cfg.Interlock.MuteGainLinear = fs.EchoInterlock.TxMuteGain

	cfg.Processing.EnableInterceptionPipe = fs.Processing.EnableInterceptionPipe

	if cfg.Audio.GainMin > cfg.Audio.GainMax {
		return Config{}, errkind.Wrap(errkind.Configuration, "audio.gain_min (%v) exceeds audio.gain_max (%v)", cfg.Audio.GainMin, cfg.Audio.GainMax)
	}

	return cfg, nil
}

// DSPConfig adapts an AudioConfig section into a dsp.Config for one
// pipeline direction. When processing.enable_interception_pipe is set,
// a dsp.Chain is attached as the last stage; counters records plugin
// failures on that chain. The attached chain holds no plugins, so it
// passes PCM through unchanged.
func (c Config) DSPConfig(resample bool, counters *stats.Counters) dsp.Config {
	cfg := dsp.Config{
		GainMin:        c.Audio.GainMin,
		GainMax:        c.Audio.GainMax,
		Gain:           c.Audio.Gain,
		EnableAGC:      c.Audio.EnableAGC,
		AGCThresholdDb: c.Audio.AGCThresholdDb,
		EnableResample: resample,
	}
	if c.Processing.EnableInterceptionPipe {
		cfg.Chain = dsp.NewChain(counters)
	}
	return cfg
}

// GenerateSample writes a fully-populated sample configuration file to
// path, for --gen-config.
func GenerateSample(path string) error {
	sample := fileSchema{}
	sample.USRP.ListenAddress = "0.0.0.0"
	sample.USRP.ListenPort = 40001
	sample.USRP.BufferSize = 65536
	sample.USRPClient.TargetAddress = "127.0.0.1"
	sample.USRPClient.TargetPort = 40001
	sample.MMDVM.Address = "127.0.0.1"
	sample.MMDVM.Port = 33100
	sample.MMDVM.BufferSize = 65536
	sample.MMDVMRx.ListenAddress = "0.0.0.0"
	sample.MMDVMRx.RxPort = 33101
	sample.Audio.SampleRate = 8000
	sample.Audio.Channels = 1
	sample.Audio.Gain = 1.0
	sample.Audio.GainMin = 0.0
	sample.Audio.GainMax = 10.0
	sample.Audio.EnableAGC = false
	sample.Audio.AGCThresholdDb = -20
	sample.VOX.Threshold = 1000
	sample.VOX.HangtimeMs = 600
	sample.VOX.HardTimeoutMs = 60000
	sample.JitterBuffer.FrameTimeMs = 20
	sample.JitterBuffer.BufferSize = 3
	sample.EchoInterlock.Enable = false
	sample.EchoInterlock.RxTimeoutMs = 500
	sample.EchoInterlock.TxMuteGain = 0
	sample.Processing.EnableInterceptionPipe = false

	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
