package utils

import (
	"fmt"
	"io"
	"sync"
)

// ProgressLine renders transfer progress on one terminal line, rewritten in
// place, and ends the line when the transfer finishes.
type ProgressLine struct {
	mu   sync.Mutex
	w    io.Writer
	open bool
}

// NewProgressLine creates a progress line writing to w.
func NewProgressLine(w io.Writer) *ProgressLine {
	return &ProgressLine{w: w}
}

// Update redraws the line for path. A negative total means unknown.
func (p *ProgressLine) Update(path string, current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r%s %s", path, Progress(current, total))
	p.open = true
}

// Done terminates the current line. Nothing is written when no update was
// drawn since the last Done.
func (p *ProgressLine) Done(_ string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return
	}
	if err != nil {
		fmt.Fprintln(p.w, " failed")
	} else {
		fmt.Fprintln(p.w, " done")
	}
	p.open = false
}
