package aqreport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testWatcherDebounce = 50 * time.Millisecond

func TestNewTemplateWatcher_Validation(t *testing.T) {
	_, err := NewTemplateWatcher(t.TempDir(), nil, WatcherOptions{})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrMsgNilRegenerateFunc, cfgErr.Message)
}

func TestTemplateWatcher_StartMissingDir(t *testing.T) {
	w, err := NewTemplateWatcher(filepath.Join(t.TempDir(), "missing"), func(context.Context) error { return nil }, WatcherOptions{})
	require.NoError(t, err)
	defer w.Stop()

	err = w.Start(context.Background())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrMsgWatcherAddFailed, cfgErr.Message)
}

func TestTemplateWatcher_DebouncesTemplateChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	var calls atomic.Int32
	w, err := NewTemplateWatcher(dir, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, WatcherOptions{Debounce: testWatcherDebounce})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()), "second start is a no-op")

	path := filepath.Join(dir, TemplateFileZone)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{zone.zn_code}"), FilesystemFilePermissions))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(3 * testWatcherDebounce)
	assert.Equal(t, int32(1), calls.Load(), "a burst of writes regenerates once")
	assert.Equal(t, 1, w.Runs())

	w.Stop()
	w.Stop()
}

func TestTemplateWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	var calls atomic.Int32
	w, err := NewTemplateWatcher(dir, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("logged, not fatal")
	}, WatcherOptions{Debounce: testWatcherDebounce})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), FilesystemFilePermissions))
	time.Sleep(4 * testWatcherDebounce)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateFilePollutant), []byte("{co_code}"), FilesystemFilePermissions))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestTemplateWatcher_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w, err := NewTemplateWatcher(t.TempDir(), func(context.Context) error { return nil }, WatcherOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not exit after cancel")
	}
	w.Stop()
}
