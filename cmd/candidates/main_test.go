package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"candidate-tracker/internal/auth"
	"candidate-tracker/internal/config"
	"candidate-tracker/internal/datadir"
)

// newDataDir returns a data directory whose config hashes cheaply.
func newDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Auth.BcryptCost = 4
	require.NoError(t, config.SaveAtomic(filepath.Join(dir, config.FileName), cfg))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func asAdmin(dir string, args ...string) []string {
	return append([]string{"-data", dir, "-user", "admin", "-password", config.StockAdminPassword}, args...)
}

func TestUsageErrors(t *testing.T) {
	_, err := runCLI(t)
	require.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "-data", newDataDir(t), "frobnicate")
	require.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "-h")
	require.NoError(t, err)
}

func TestInit(t *testing.T) {
	dir := newDataDir(t)
	out, err := runCLI(t, "-data", dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "candidates.db"))
	assert.FileExists(t, filepath.Join(dir, "candidates.db"))
	assert.DirExists(t, filepath.Join(dir, "attachments"))
}

func TestCandidateLifecycle(t *testing.T) {
	dir := newDataDir(t)

	resume := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("%PDF-1.4"), 0o644))

	out, err := runCLI(t, asAdmin(dir, "add",
		"-name", "Grace Hopper", "-position", "Engineer", "-email", "grace@example.com",
		"-date", "2025-06-02", "-priority", "High", "-resume", resume)...)
	require.NoError(t, err)
	assert.Contains(t, out, "added candidate 1")
	assert.FileExists(t, filepath.Join(dir, "attachments", "cv.pdf"))

	_, err = runCLI(t, asAdmin(dir, "add", "-name", "Dup", "-position", "X", "-email", "grace@example.com")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = runCLI(t, asAdmin(dir, "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Grace Hopper")
	assert.Contains(t, out, "1 candidate(s)")

	_, err = runCLI(t, asAdmin(dir, "set-status", "1", "Interview")...)
	require.NoError(t, err)
	_, err = runCLI(t, asAdmin(dir, "set-status", "1", "Hired")...)
	require.Error(t, err)

	_, err = runCLI(t, asAdmin(dir, "edit", "-id", "1", "-notes", "second round booked")...)
	require.NoError(t, err)

	out, err = runCLI(t, asAdmin(dir, "show", "1")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Interview")
	assert.Contains(t, out, "second round booked")

	out, err = runCLI(t, asAdmin(dir, "search", "-status", "Interview", "-name", "grace")...)
	require.NoError(t, err)
	assert.Contains(t, out, "1 candidate(s)")

	out, err = runCLI(t, asAdmin(dir, "stats")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Interview:")

	_, err = runCLI(t, asAdmin(dir, "delete", "1")...)
	require.NoError(t, err)
	out, err = runCLI(t, asAdmin(dir, "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "0 candidate(s)")
}

func TestStandardUserCannotDelete(t *testing.T) {
	dir := newDataDir(t)

	_, err := runCLI(t, asAdmin(dir, "useradd", "-username", "rita", "-new-password", "pw")...)
	require.NoError(t, err)
	_, err = runCLI(t, asAdmin(dir, "add", "-name", "A", "-position", "B", "-email", "a@example.com")...)
	require.NoError(t, err)

	_, err = runCLI(t, "-data", dir, "-user", "rita", "-password", "pw", "delete", "1")
	require.ErrorIs(t, err, auth.ErrForbidden)

	out, err := runCLI(t, "-data", dir, "-user", "rita", "-password", "pw", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 candidate(s)")
}

func TestRememberedLogin(t *testing.T) {
	keyring.MockInit()
	dir := newDataDir(t)

	_, err := runCLI(t, "-data", dir, "list")
	require.Error(t, err)

	_, err = runCLI(t, asAdmin(dir, "login", "-remember")...)
	require.NoError(t, err)

	out, err := runCLI(t, "-data", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 candidate(s)")

	_, err = runCLI(t, "-data", dir, "passwd", "-new", "changed", "-confirm", "changed")
	require.NoError(t, err)
	_, err = runCLI(t, "-data", dir, "list")
	require.NoError(t, err)

	_, err = runCLI(t, "-data", dir, "forget")
	require.NoError(t, err)
	_, err = runCLI(t, "-data", dir, "list")
	require.Error(t, err)
}

func TestExportImport(t *testing.T) {
	src := newDataDir(t)
	_, err := runCLI(t, asAdmin(src, "add", "-name", "A", "-position", "B", "-email", "a@example.com")...)
	require.NoError(t, err)

	xlsx := filepath.Join(t.TempDir(), "out.xlsx")
	_, err = runCLI(t, asAdmin(src, "export", "-format", "xlsx", "-o", xlsx)...)
	require.NoError(t, err)

	dst := newDataDir(t)
	out, err := runCLI(t, asAdmin(dst, "import", xlsx)...)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 candidate(s), skipped 0")

	bundle := filepath.Join(t.TempDir(), "bundle")
	out, err = runCLI(t, asAdmin(dst, "export", "-format", "bundle", "-o", bundle)...)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 files")

	pdf := filepath.Join(t.TempDir(), "one.pdf")
	_, err = runCLI(t, asAdmin(dst, "report", "-id", "1", "-o", pdf)...)
	require.NoError(t, err)
	assert.FileExists(t, pdf)
}

func TestDataDirLocked(t *testing.T) {
	dir := newDataDir(t)
	lock, err := datadir.Acquire(dir)
	require.NoError(t, err)
	defer lock.Release()

	_, err = runCLI(t, "-data", dir, "init")
	require.ErrorIs(t, err, datadir.ErrAlreadyRunning)
}

func TestResolveDataDir(t *testing.T) {
	t.Setenv(dataDirEnv, "/from/env")
	assert.Equal(t, "/from/flag", resolveDataDir("/from/flag"))
	assert.Equal(t, "/from/env", resolveDataDir(""))

	t.Setenv(dataDirEnv, "")
	t.Chdir(t.TempDir())
	assert.Equal(t, ".", resolveDataDir(""))
}

func TestSources(t *testing.T) {
	dir := newDataDir(t)
	out, err := runCLI(t, "-data", dir, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "LinkedIn")
}

func TestEventsAreLoggedAtDebug(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Auth.BcryptCost = 4
	cfg.Log.Level = "debug"
	require.NoError(t, config.SaveAtomic(filepath.Join(dir, config.FileName), cfg))

	var out, errOut bytes.Buffer
	err := run(context.Background(),
		asAdmin(dir, "add", "-name", "A", "-position", "B", "-email", "a@example.com"),
		&out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "type=candidate_added")
	assert.Contains(t, errOut.String(), "actor=admin")
}
