package pipeline

import (
	"io"
	"os"
	"sync"
)

// Quietly runs fn. When quiet is true, anything fn writes to the
// process's stdout is discarded for the duration of the call; the
// stream is restored before Quietly returns, on every path. Return
// values and errors pass through untouched.
func Quietly(quiet bool, fn func() error) error {
	if !quiet {
		return fn()
	}

	restore, err := silenceStdout()
	if err != nil {
		// If we cannot grab the stream, run loudly rather than fail.
		return fn()
	}
	defer restore()

	return fn()
}

// silenceStdout swaps os.Stdout for a drained pipe and returns the
// function that puts the real stream back.
func silenceStdout() (func(), error) {
	orig := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	os.Stdout = w

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		io.Copy(io.Discard, r)
	}()

	return func() {
		os.Stdout = orig
		w.Close()
		wg.Wait()
		r.Close()
	}, nil
}
