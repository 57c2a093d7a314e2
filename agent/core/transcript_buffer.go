package core

import (
	"bytes"
	"fmt"
	"sync"
)

const truncationBanner = "…(earlier entries truncated)\n"

// TranscriptBuffer is a line-oriented text buffer capped at max bytes. When
// the cap is hit the oldest bytes are dropped and a banner marks the cut, so
// the most recent entries always survive.
type TranscriptBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func NewTranscriptBuffer(maxBytes int) *TranscriptBuffer {
	if maxBytes < 0 {
		maxBytes = 0
	}
	return &TranscriptBuffer{max: maxBytes}
}

func (t *TranscriptBuffer) AppendString(s string) {
	if t == nil || s == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.max == 0 {
		return
	}

	t.buf = append(t.buf, s...)
	if s[len(s)-1] != '\n' {
		t.buf = append(t.buf, '\n')
	}
	t.trimLocked()
}

func (t *TranscriptBuffer) Appendf(format string, args ...any) {
	t.AppendString(fmt.Sprintf(format, args...))
}

func (t *TranscriptBuffer) String() string {
	if t == nil {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

func (t *TranscriptBuffer) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

func (t *TranscriptBuffer) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = t.buf[:0]
}

func (t *TranscriptBuffer) trimLocked() {
	if len(t.buf) <= t.max {
		return
	}

	banner := []byte(truncationBanner)
	if len(banner) >= t.max {
		t.buf = append(t.buf[:0], t.buf[len(t.buf)-t.max:]...)
		return
	}

	body := bytes.TrimPrefix(t.buf, banner)
	keep := body[len(body)-(t.max-len(banner)):]

	// prefer cutting at a line boundary
	if i := bytes.IndexByte(keep, '\n'); i >= 0 && i+1 < len(keep) {
		keep = keep[i+1:]
	}

	out := make([]byte, 0, t.max)
	out = append(out, banner...)
	out = append(out, keep...)
	t.buf = out
}
