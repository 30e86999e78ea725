package app

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard moves text between the editor and the outside world.
// Failures are reported to the status line, never fatal.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

// SystemClipboard uses the platform clipboard and falls back to an
// in-process buffer where none is available, such as over ssh.
type SystemClipboard struct {
	mu    sync.Mutex
	local string
}

func (c *SystemClipboard) WriteText(s string) error {
	c.mu.Lock()
	c.local = s
	c.mu.Unlock()
	if clipboard.Unsupported {
		return nil
	}
	return clipboard.WriteAll(s)
}

func (c *SystemClipboard) ReadText() (string, error) {
	if !clipboard.Unsupported {
		if s, err := clipboard.ReadAll(); err == nil {
			return s, nil
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local, nil
}

// MemoryClipboard keeps text in memory only.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *MemoryClipboard) WriteText(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = s
	return nil
}

func (c *MemoryClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}
