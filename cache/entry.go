package cache

import "time"

// Entry remembers the last chat thread used in a workspace root.
type Entry struct {
	Root      string    `json:"root"`
	Thread    string    `json:"thread"`
	UpdatedAt time.Time `json:"updated_at"`
}
