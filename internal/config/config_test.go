package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"usrpdmr/internal/errkind"
	"usrpdmr/internal/stats"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaultsForMissingOptionalKeys(t *testing.T) {
	path := writeConfig(t, `{
		"usrp": {"listen_address": "0.0.0.0"},
		"usrp_client": {"target_address": "127.0.0.1"},
		"mmdvm": {"address": "127.0.0.1"},
		"mmdvm_rx": {"listen_address": "0.0.0.0"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 40001, cfg.USRP.ListenPort)
	require.Equal(t, 8000, cfg.Audio.SampleRate)
	require.Equal(t, 1000.0, cfg.VOX.Threshold)
	require.Equal(t, 3, cfg.Jitter.TargetDepth)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"usrp": {"listen_address": "0.0.0.0", "listen_port": 9999},
		"usrp_client": {"target_address": "127.0.0.1"},
		"mmdvm": {"address": "127.0.0.1"},
		"mmdvm_rx": {"listen_address": "0.0.0.0"},
		"vox": {"threshold": 500}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.USRP.ListenPort)
	require.Equal(t, 500.0, cfg.VOX.Threshold)
}

func TestLoadMissingRequiredKeyIsFatal(t *testing.T) {
	path := writeConfig(t, `{"usrp_client": {"target_address": "127.0.0.1"}}`)
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, errkind.ErrConfiguration))
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	require.Error(t, err)
}

func TestDSPConfigAttachesChainOnlyWhenInterceptionPipeEnabled(t *testing.T) {
	counters := &stats.Counters{}

	cfg := defaults()
	require.Nil(t, cfg.DSPConfig(true, counters).Chain)

	cfg.Processing.EnableInterceptionPipe = true
	require.NotNil(t, cfg.DSPConfig(true, counters).Chain)
}

func TestLoadRejectsInvertedGainRange(t *testing.T) {
	path := writeConfig(t, `{
		"usrp": {"listen_address": "0.0.0.0"},
		"usrp_client": {"target_address": "127.0.0.1"},
		"mmdvm": {"address": "127.0.0.1"},
		"mmdvm_rx": {"listen_address": "0.0.0.0"},
		"audio": {"gain_min": 5, "gain_max": 1}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}
