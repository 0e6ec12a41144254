// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package workspace manages the scratch directory of a single evaluation.
//
// A claimed workspace holds an exclusive lock file for its lifetime, so two
// evaluations never share intermediate files:
//
//	<ws>/.ppcdiff.lock
//	<ws>/unit/       unit.s, unit.o, unit.elf
//	<ws>/reference/  state.txt, run.log
//	<ws>/dut/        state.txt, run.log
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

const LOCK_FILE = ".ppcdiff.lock"

// Subdirectories of a workspace.
const (
	UNIT_DIR      = "unit"
	REFERENCE_DIR = "reference"
	DUT_DIR       = "dut"
)

var subDirs = []string{UNIT_DIR, REFERENCE_DIR, DUT_DIR}

// Workspace is a claimed scratch directory.
type Workspace struct {
	Verbose bool
	Keep    bool // If set, Release leaves a temporary directory in place.

	path string
	temp bool

	mutex    sync.Mutex
	released bool
}

// Claim locks the directory at path, creating it if needed, and prepares
// empty subdirectories. An empty path claims a fresh temporary directory.
//
// Claiming a directory that is already claimed fails with ErrBusy. A lock
// left by a process that no longer exists is taken over.
func Claim(path string) (ws *Workspace, err error) {
	temp := false
	if len(path) == 0 {
		path, err = os.MkdirTemp("", "ppcdiff-")
		if err != nil {
			return
		}
		temp = true
	} else {
		err = os.MkdirAll(path, 0o755)
		if err != nil {
			err = &Error{Path: path, Err: err}
			return
		}
	}

	defer func() {
		if err != nil && temp {
			_ = os.RemoveAll(path)
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		err = &Error{Path: path, Err: err}
		return
	}
	if !info.IsDir() {
		err = &Error{Path: path, Err: ErrNotDir}
		return
	}

	lockPath := filepath.Join(path, LOCK_FILE)
	err = lock(lockPath)
	if errors.Is(err, fs.ErrExist) && breakStale(lockPath) {
		err = lock(lockPath)
	}
	if errors.Is(err, fs.ErrExist) {
		err = &Error{Path: path, Err: ErrBusy}
		return
	}
	if err != nil {
		err = &Error{Path: path, Err: err}
		return
	}

	ws = &Workspace{path: path, temp: temp}

	for _, name := range subDirs {
		err = ws.reset(name)
		if err != nil {
			_ = os.Remove(lockPath)
			ws = nil
			err = &Error{Path: path, Err: err}
			return
		}
	}

	return
}

// lock creates the lock file holding our pid. It fails with fs.ErrExist if
// the lock is held.
func lock(lockPath string) (err error) {
	file, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return
	}
	_, err = fmt.Fprintf(file, "%d\n", os.Getpid())
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(lockPath)
	}
	return
}

// lockOwner reads the pid in a lock file. ok is false for a lock that is
// unreadable or still being written.
func lockOwner(lockPath string) (pid int, ok bool) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return
	}
	text, complete := strings.CutSuffix(string(data), "\n")
	if !complete {
		return
	}
	pid, err = strconv.Atoi(text)
	ok = err == nil && pid > 0
	return
}

var asideSeq atomic.Uint64

// breakStale removes a lock whose owner process has exited, and reports
// whether it did. The lock is moved aside before it is checked again, so a
// lock that a live run took in the meantime is put back instead.
func breakStale(lockPath string) (broken bool) {
	pid, ok := lockOwner(lockPath)
	if !ok || !processGone(pid) {
		return
	}

	aside := fmt.Sprintf("%v.%d.%d", lockPath, os.Getpid(), asideSeq.Add(1))
	err := os.Rename(lockPath, aside)
	if errors.Is(err, fs.ErrNotExist) {
		broken = true
		return
	}
	if err != nil {
		return
	}
	defer func() { _ = os.Remove(aside) }()

	current, ok := lockOwner(aside)
	if !ok || current != pid {
		_ = os.Link(aside, lockPath)
		return
	}

	log.Printf("workspace: removed stale lock of pid %d in %v", pid, filepath.Dir(lockPath))
	broken = true
	return
}

// reset replaces a subdirectory with an empty one.
func (ws *Workspace) reset(name string) (err error) {
	dir := filepath.Join(ws.path, name)
	err = os.RemoveAll(dir)
	if err != nil {
		return
	}
	err = os.Mkdir(dir, 0o755)
	return
}

// Path returns the workspace directory.
func (ws *Workspace) Path() string {
	return ws.path
}

// Temporary is true if Claim created the directory.
func (ws *Workspace) Temporary() bool {
	return ws.temp
}

// Sub returns the path of a workspace subdirectory, creating it if needed.
func (ws *Workspace) Sub(name string) (dir string, err error) {
	if !filepath.IsLocal(name) {
		err = &Error{Path: ws.path, Err: fs.ErrInvalid}
		return
	}
	dir = filepath.Join(ws.path, name)
	err = os.MkdirAll(dir, 0o755)
	return
}

// Unit is the directory for the assembled unit.
func (ws *Workspace) Unit() string {
	return filepath.Join(ws.path, UNIT_DIR)
}

// Release drops the lock. A temporary workspace is removed unless Keep is
// set.
func (ws *Workspace) Release() (err error) {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if ws.released {
		err = &Error{Path: ws.path, Err: ErrReleased}
		return
	}
	ws.released = true

	if ws.temp && !ws.Keep {
		err = os.RemoveAll(ws.path)
		return
	}

	err = os.Remove(filepath.Join(ws.path, LOCK_FILE))
	if ws.Verbose && err == nil {
		log.Printf("workspace: kept %v", ws.path)
	}

	return
}
