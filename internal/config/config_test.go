package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-tracker/internal/config"
)

func TestDefaultIsValidButWarnsAboutStockPassword(t *testing.T) {
	_, res := config.NormalizeAndValidate(config.Default())
	assert.True(t, res.OK(), "errors: %v", res.Errors)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "default_admin_password")
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []string{" LinkedIn", "linkedin", "", "Referral "}
	cfg.Store.BusyTimeoutSeconds = 0
	cfg.Auth.BcryptCost = 99
	cfg.Log.Level = "LOUD"
	cfg.Log.Format = "xml"

	out, res := config.NormalizeAndValidate(cfg)
	assert.Equal(t, []string{"LinkedIn", "Referral"}, out.Sources)
	assert.False(t, res.OK())
	assert.Len(t, res.Errors, 4)
}

func TestThrottleSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.LoginAttemptsPerMinute = 3
	cfg.Auth.LoginBurst = 0
	_, res := config.NormalizeAndValidate(cfg)
	assert.False(t, res.OK())

	cfg.Auth.LoginAttemptsPerMinute = 0
	_, res = config.NormalizeAndValidate(cfg)
	assert.True(t, res.OK())
	assert.NotEmpty(t, res.Warnings)
}

func TestEnsureUserConfigWritesDefaultsOnce(t *testing.T) {
	dir := t.TempDir()

	path, err := config.EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.FileName), path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Sources, cfg.Sources)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	again, err := config.EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log:\n  level: debug\n", string(b))
}

func TestLoadOverlaysPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  busy_timeout_seconds: 5
sources: [Indeed]
log:
  format: json
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout())
	assert.Equal(t, []string{"Indeed"}, cfg.Sources)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "candidates.db", cfg.App.DBFile)
}

func TestLoadDirResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SourcesFileName),
		[]byte("sources:\n  - Campus\n  - Agency\n"), 0o644))

	cfg, path, err := config.LoadDir(dir)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, dir, cfg.App.DataDir)
	assert.Equal(t, filepath.Join(dir, "candidates.db"), cfg.DBPath())
	assert.Equal(t, filepath.Join(dir, "attachments"), cfg.AttachmentsPath())
	assert.Equal(t, filepath.Join(dir, "photos"), cfg.PhotosPath())
	assert.Equal(t, []string{"Campus", "Agency"}, cfg.Sources)

	abs := filepath.Join(t.TempDir(), "elsewhere.db")
	cfg.App.DBFile = abs
	assert.Equal(t, abs, cfg.DBPath())
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.FileName)

	cfg := config.Default()
	require.NoError(t, config.SaveAtomic(path, cfg))

	cfg.Sources = []string{"Referral"}
	require.NoError(t, config.SaveAtomic(path, cfg))

	cur, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Referral"}, cur.Sources)

	bak, err := config.Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Sources, bak.Sources)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	cfg := config.Default()
	cfg.App.DBFile = ""

	err := config.SaveAtomic(path, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.db_file")
	assert.NoFileExists(t, path)
}
