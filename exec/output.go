package exec

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StreamingWriter echoes process output line by line with a styled prefix
type StreamingWriter struct {
	prefix string
	style  lipgloss.Style
	writer io.Writer
	// Buffer for incomplete lines
	buffer []byte
}

// NewStreamingWriter creates a formatted output writer
func NewStreamingWriter(writer io.Writer, prefix string, color lipgloss.Color) *StreamingWriter {
	return &StreamingWriter{
		prefix: prefix,
		style:  lipgloss.NewStyle().Foreground(color),
		writer: writer,
		buffer: make([]byte, 0),
	}
}

// Write formats and writes output line by line
func (s *StreamingWriter) Write(p []byte) (n int, err error) {
	s.buffer = append(s.buffer, p...)

	lines := strings.Split(string(s.buffer), "\n")

	// Keep the last incomplete line in buffer
	s.buffer = []byte(lines[len(lines)-1])
	lines = lines[:len(lines)-1]

	for _, line := range lines {
		if _, err := s.writer.Write([]byte(s.formatLine(line) + "\n")); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// Flush writes any remaining buffered content
func (s *StreamingWriter) Flush() error {
	if len(s.buffer) > 0 {
		formatted := s.formatLine(string(s.buffer))
		_, err := s.writer.Write([]byte(formatted + "\n"))
		s.buffer = s.buffer[:0]
		return err
	}
	return nil
}

// formatLine formats a single line with prefix and style
func (s *StreamingWriter) formatLine(line string) string {
	if s.prefix != "" {
		line = s.prefix + line
	}
	return s.style.Render(line)
}
