package framework

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// StartCPUProfile starts CPU profiling to path and returns the stop
// function. An empty path returns a no-op.
func StartCPUProfile(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}

	profileFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}

	err = pprof.StartCPUProfile(profileFile)
	if err != nil {
		profileFile.Close()

		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}

	return func() {
		pprof.StopCPUProfile()

		_ = profileFile.Close()
	}, nil
}

// WriteHeapProfile writes a heap profile to path after a GC. An empty path
// does nothing.
func WriteHeapProfile(path string) error {
	if path == "" {
		return nil
	}

	profileFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create heap profile: %w", err)
	}
	defer profileFile.Close()

	runtime.GC()

	err = pprof.WriteHeapProfile(profileFile)
	if err != nil {
		return fmt.Errorf("could not write heap profile: %w", err)
	}

	return nil
}
