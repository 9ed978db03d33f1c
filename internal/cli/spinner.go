package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerOut is where spinner frames are drawn. Frames never go to stdout,
// so piped command output stays clean.
var spinnerOut io.Writer = os.Stderr

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner draws a progress indicator until stopped or its context ends.
type spinner struct {
	message string
	w       io.Writer
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// startSpinner begins animating message on w.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{message: message, w: w, cancel: cancel, stopped: make(chan struct{})}

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
			}
		}
	}()
	return s
}

// stop halts the animation and clears the line. It is safe to call twice.
func (s *spinner) stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// spin runs fn while a spinner shows message.
func spin(ctx context.Context, message string, fn func() error) error {
	s := startSpinner(ctx, spinnerOut, message)
	defer s.stop()
	return fn()
}
