package history

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

type Manager struct {
	store Store
	now   func() time.Time
}

func NewHistory(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

func (h *Manager) WithClock(now func() time.Time) *Manager {
	h.now = now
	return h
}

// Messages returns the conversation stored for thread. A thread that does
// not exist yet is empty.
func (h *Manager) Messages(thread string) ([]types.Message, error) {
	entries, err := h.store.ReadThread(thread)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	result := make([]types.Message, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Message)
	}
	return result, nil
}

// Append adds messages to thread, stamped with the current time.
func (h *Manager) Append(thread string, messages ...types.Message) error {
	if len(messages) == 0 {
		return nil
	}

	entries, err := h.store.ReadThread(thread)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	now := h.now()
	for _, m := range messages {
		entries = append(entries, History{Message: m, Timestamp: now})
	}
	return h.store.WriteThread(thread, entries)
}

func (h *Manager) Delete(thread string) error {
	return h.store.DeleteThread(thread)
}

// ListThreads marks the current thread with an asterisk.
func (h *Manager) ListThreads(current string) ([]string, error) {
	threads, err := h.store.ListThreads()
	if err != nil {
		return nil, err
	}

	var result []string
	for _, thread := range threads {
		if thread != current {
			result = append(result, fmt.Sprintf("- %s", thread))
			continue
		}
		result = append(result, fmt.Sprintf("* %s (current)", thread))
	}
	return result, nil
}

func (h *Manager) Print(thread string) (string, error) {
	entries, err := h.store.ReadThread(thread)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(formatHistory(entry))
	}
	return b.String(), nil
}

func formatHistory(entry History) string {
	var (
		emoji     string
		prefix    string
		timestamp string
	)

	switch entry.Role {
	case types.SystemRole:
		emoji = "💻"
		prefix = "\n"
	case types.UserRole:
		emoji = "👤"
		prefix = "---\n"
		if !entry.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" [%s]", entry.Timestamp.Format("2006-01-02 15:04:05"))
		}
	case types.AssistantRole:
		emoji = "🤖"
		prefix = "\n"
	}

	return fmt.Sprintf("%s**%s** %s%s:\n%s\n", prefix, strings.ToUpper(entry.Role), emoji, timestamp, entry.Content)
}
