package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/markdown"
)

// Engine errors.
var (
	// ErrInvalidOffset is returned for offsets outside the document or
	// inside a multi-byte character. It is buffer.ErrInvalidOffset.
	ErrInvalidOffset = buffer.ErrInvalidOffset

	// ErrUnknownCommand is returned for a CommandKind outside the vocabulary.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnsupportedFormat is returned when ToggleFormatting is given a
	// kind other than Strong, Emphasis, Strikethrough or CodeSpan.
	ErrUnsupportedFormat = errors.New("unsupported formatting kind")

	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("engine closed")
)

// CommandError wraps a failed command.
type CommandError struct {
	Cmd Command
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func unsupported(k markdown.Kind) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, k)
}
