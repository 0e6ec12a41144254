package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimPath(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "ws")
	ws, err := Claim(path)
	require.NoError(t, err)
	assert.Equal(path, ws.Path())
	assert.False(ws.Temporary())

	for _, name := range []string{LOCK_FILE, UNIT_DIR, REFERENCE_DIR, DUT_DIR} {
		_, err := os.Stat(filepath.Join(path, name))
		assert.NoError(err, name)
	}
	assert.Equal(filepath.Join(path, UNIT_DIR), ws.Unit())

	_, err = Claim(path)
	assert.ErrorIs(err, ErrBusy)
	var wsErr *Error
	assert.True(errors.As(err, &wsErr))
	assert.Equal(path, wsErr.Path)

	require.NoError(t, ws.Release())
	_, err = os.Stat(filepath.Join(path, LOCK_FILE))
	assert.ErrorIs(err, os.ErrNotExist)
	_, err = os.Stat(path)
	assert.NoError(err)

	assert.ErrorIs(ws.Release(), ErrReleased)
}

func TestClaimClearsStaleFiles(t *testing.T) {
	assert := assert.New(t)

	path := t.TempDir()
	stale := filepath.Join(path, DUT_DIR, "state.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("r3 1\n"), 0o644))

	ws, err := Claim(path)
	require.NoError(t, err)
	defer ws.Release()

	_, err = os.Stat(stale)
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestClaimTemporary(t *testing.T) {
	assert := assert.New(t)

	ws, err := Claim("")
	require.NoError(t, err)
	assert.True(ws.Temporary())

	dir, err := ws.Sub(REFERENCE_DIR)
	require.NoError(t, err)
	assert.Equal(filepath.Join(ws.Path(), REFERENCE_DIR), dir)

	_, err = ws.Sub("../escape")
	assert.Error(err)

	require.NoError(t, ws.Release())
	_, err = os.Stat(ws.Path())
	assert.ErrorIs(err, os.ErrNotExist)

	ws, err = Claim("")
	require.NoError(t, err)
	ws.Keep = true
	require.NoError(t, ws.Release())
	_, err = os.Stat(ws.Path())
	assert.NoError(err)
	_, err = os.Stat(filepath.Join(ws.Path(), LOCK_FILE))
	assert.ErrorIs(err, os.ErrNotExist)
	assert.NoError(os.RemoveAll(ws.Path()))
}

func TestClaimNotDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Claim(path)
	assert.Error(t, err)
}

func TestClaimExclusive(t *testing.T) {
	assert := assert.New(t)

	path := t.TempDir()

	const runs = 8
	var wg sync.WaitGroup
	claimed := make(chan *Workspace, runs)
	busy := make(chan error, runs)

	for range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws, err := Claim(path)
			if err != nil {
				busy <- err
				return
			}
			claimed <- ws
		}()
	}
	wg.Wait()
	close(claimed)
	close(busy)

	assert.Len(claimed, 1)
	assert.Len(busy, runs-1)
	for err := range busy {
		assert.ErrorIs(err, ErrBusy)
	}
	for ws := range claimed {
		assert.NoError(ws.Release())
	}
}

func TestClaimStaleLock(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no process probe")
	}
	assert := assert.New(t)

	path := t.TempDir()
	lockPath := filepath.Join(path, LOCK_FILE)

	// An owner that has exited.
	require.NoError(t, os.WriteFile(lockPath, []byte("999999999\n"), 0o644))
	ws, err := Claim(path)
	require.NoError(t, err)

	pid, ok := lockOwner(lockPath)
	assert.True(ok)
	assert.Equal(os.Getpid(), pid)
	require.NoError(t, ws.Release())

	// A live owner, and a lock still being written.
	for _, text := range []string{fmt.Sprintf("%d\n", os.Getpid()), "", "12"} {
		require.NoError(t, os.WriteFile(lockPath, []byte(text), 0o644))
		_, err = Claim(path)
		assert.ErrorIs(err, ErrBusy, "%q", text)

		data, err := os.ReadFile(lockPath)
		require.NoError(t, err)
		assert.Equal(text, string(data))
	}

	matches, err := filepath.Glob(lockPath + ".*")
	require.NoError(t, err)
	assert.Empty(matches)
}
