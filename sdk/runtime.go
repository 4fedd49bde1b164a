// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sdk

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// runtimeEntry tracks one library's process-wide initialization.
type runtimeEntry struct {
	refs   int
	status Status
}

var (
	runtimeMu sync.Mutex
	runtimes  = make(map[any]*runtimeEntry)
)

// libraryName keys libraries that cannot be map keys themselves.
type libraryName string

// keyOf returns the runtime table key for lib: the library value itself,
// or its name when the value holds slices, maps or funcs.
func keyOf(lib Library) any {
	if reflect.ValueOf(lib).Comparable() {
		return lib
	}
	return libraryName(lib.Name())
}

// Acquire initializes lib at most once per process and takes a reference.
// Concurrent callers serialize on a single critical section, so Init runs
// exactly once even when sessions start in parallel.
//
// A failed Init is remembered: later calls return the same status without
// calling into the library again. The returned error is non-nil only when
// the Init symbol is missing.
func Acquire(lib Library, appID uint64, device uintptr) (Status, error) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	key := keyOf(lib)
	if e, ok := runtimes[key]; ok {
		if e.status.OK() {
			e.refs++
		}
		return e.status, nil
	}

	status, err := lib.Init(appID, device)
	if err != nil {
		return StatusFail, fmt.Errorf("%s init: %w", lib.Name(), err)
	}
	e := &runtimeEntry{status: status}
	if status.OK() {
		e.refs = 1
		logger().Info("sdk: initialized", "library", lib.Name())
	} else {
		logger().Warn("sdk: initialization failed", "library", lib.Name(), "status", status.String())
	}
	runtimes[key] = e
	return status, nil
}

// Release drops a reference taken by a successful Acquire. The last
// reference shuts the library down; a later Acquire initializes it again.
func Release(lib Library) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	key := keyOf(lib)
	e, ok := runtimes[key]
	if !ok || !e.status.OK() || e.refs == 0 {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(runtimes, key)
	status, err := lib.Shutdown()
	switch {
	case err != nil:
		logger().Warn("sdk: shutdown unavailable", "library", lib.Name(), "err", err)
	case !status.OK():
		logger().Warn("sdk: shutdown failed", "library", lib.Name(), "status", status.String())
	default:
		logger().Info("sdk: shut down", "library", lib.Name())
	}
}

// Refs returns the number of live references to lib.
func Refs(lib Library) int {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if e, ok := runtimes[keyOf(lib)]; ok {
		return e.refs
	}
	return 0
}

// Forget drops any remembered state for lib without calling Shutdown.
// Tests use it to reset the process-wide table.
func Forget(lib Library) {
	runtimeMu.Lock()
	delete(runtimes, keyOf(lib))
	runtimeMu.Unlock()
}

// logger returns the logger configured through SetLogger.
func logger() *slog.Logger { return loggerPtr.Load() }
