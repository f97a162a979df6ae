package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusWriter keeps a single spinner line updated in place while work
// without a table runs, such as resolving tools for the check command.
type StatusWriter struct {
	w       io.Writer
	mu      sync.Mutex
	message string
	started time.Time
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewStatusWriter starts the spinner on w.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{
		w:       w,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.loop()
	return sw
}

// Update replaces the message next to the spinner.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.mu.Unlock()
}

// Stop clears the line and stops the spinner. It is safe to call twice.
func (sw *StatusWriter) Stop() {
	sw.once.Do(func() {
		close(sw.done)
		sw.wg.Wait()
		fmt.Fprint(sw.w, "\r\033[K")
	})
}

func (sw *StatusWriter) loop() {
	defer sw.wg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			sw.mu.Lock()
			msg := sw.message
			sw.mu.Unlock()
			elapsed := time.Since(sw.started).Truncate(100 * time.Millisecond)
			fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", spinnerFrames[tick%len(spinnerFrames)], msg, elapsed)
		}
	}
}
