package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/cipher"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, Validate(cfg, nil))
}

func TestLoadPrecedence(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)

	yamlConfig := []byte(`session:
  suite: INOP-38
  rotors: [R1, R2, R3, R4, R5]
  reflector: E
  ring_set: [1, 2, 3, 4, 5]
  notch_map:
    R2: "A#"
  plugs: [AB, "0/"]
  master_key: " KEYKEY "
pipeline:
  double_pass: false
  padding: true
  block: 5
  base_noise: 8
  marker_len: 6
  target_residue: 1
  noise_scale: 0.25
server:
  http_addr: 0.0.0.0:9000
  shutdown_timeout: 2s
tracing:
  sample_ratio: 0.5
`)
	require.NoError(t, os.WriteFile(filepath.Join(workDir, FileName), yamlConfig, 0o600))

	t.Setenv("INOP_GRPC_ADDR", "0.0.0.0:9001")
	t.Setenv("INOP_STEP_REFLECTOR", "true")
	t.Setenv("INOP_BLOCK", "not-a-number")
	t.Setenv("INOP_LOG_LEVEL", "debug")
	t.Setenv("INOP_TRACE_FILE", "/tmp/inop-spans.jsonl")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "INOP-38", cfg.Session.Suite)
	assert.Equal(t, []string{"R1", "R2", "R3", "R4", "R5"}, cfg.Session.Rotors)
	assert.Equal(t, map[string]string{"R2": "A#"}, cfg.Session.NotchMap)
	assert.Equal(t, "KEYKEY", cfg.Session.MasterKey)
	assert.False(t, cfg.Pipeline.DoublePass)
	assert.True(t, cfg.Pipeline.StepReflector)
	assert.Equal(t, 5, cfg.Pipeline.Block, "invalid env value is ignored")
	assert.Equal(t, 6, cfg.Pipeline.MarkerLen)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.HTTPAddr)
	assert.Equal(t, "0.0.0.0:9001", cfg.Server.GRPCAddr)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 64, cfg.Server.MaxConns, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 0.5, cfg.Tracing.SampleRatio)
	assert.Equal(t, "inopd", cfg.Tracing.ServiceName)
	assert.Equal(t, "/tmp/inop-spans.jsonl", cfg.Tracing.FilePath)
	require.NoError(t, Validate(cfg, nil))
}

func TestLoadExplicitPath(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "typo.yml")
	require.NoError(t, os.WriteFile(path, []byte("sesion:\n  suite: Legacy\n"), 0o600))
	_, err = Load(path)
	require.ErrorContains(t, err, "sesion")

	empty := filepath.Join(t.TempDir(), "empty.yml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err := Load(empty)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateReportsEverySection(t *testing.T) {
	cfg := Default()
	cfg.Session.MasterKey = "AA"
	cfg.Pipeline.Block = 0
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Server.MaxConns = -1
	cfg.Tracing.SampleRatio = 2

	err := Validate(cfg, nil)
	require.Error(t, err)
	for _, want := range []string{"master key", "block", "loud", "xml", "max_conns", "sample_ratio"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, "INFO", level.String())

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, "WARN", level.String())

	_, err = ParseLevel("chatty")
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	settings, err := Generate("INOP-60", nil, cipher.NewSeededSource(5))
	require.NoError(t, err)
	cfg.Session = settings
	cfg.Pipeline.StepReflector = true

	require.NoError(t, Save(path, cfg))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGenerate(t *testing.T) {
	for _, suite := range alphabet.Suites() {
		t.Run(suite.Name, func(t *testing.T) {
			for seed := uint64(1); seed <= 20; seed++ {
				settings, err := Generate(suite.Name, nil, cipher.NewSeededSource(seed))
				require.NoError(t, err)

				assert.Equal(t, suite.Name, settings.Suite)
				assert.Len(t, settings.Rotors, suite.Rotors)
				assert.Len(t, settings.RingSet, suite.Rotors)
				assert.Len(t, settings.Plugs, suite.MaxPairs)
				assert.Len(t, []rune(settings.MasterKey), suite.Rotors+1)

				seen := map[string]bool{}
				for _, r := range settings.Rotors {
					assert.False(t, seen[r], "rotor %s drawn twice", r)
					seen[r] = true
				}
				if suite.MaxNotches == 0 {
					assert.Empty(t, settings.NotchMap)
				}
				for _, notches := range settings.NotchMap {
					assert.LessOrEqual(t, len([]rune(notches)), suite.MaxNotches)
				}

				_, err = cipher.NewSession(settings, nil)
				require.NoError(t, err)
			}
		})
	}

	a, err := Generate("legacy", nil, cipher.NewSeededSource(9))
	require.NoError(t, err)
	b, err := Generate("legacy", nil, cipher.NewSeededSource(9))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = Generate("INOP-99", nil, nil)
	require.Error(t, err)
}
