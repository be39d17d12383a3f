// Package ui implements the terminal surfaces the services talk to: a
// blocking yes/no confirmation prompt and a non-blocking error toast.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TerminalPrompter asks yes/no questions on the terminal. Any answer other
// than "y" or "yes" (case-insensitive) counts as no.
type TerminalPrompter struct {
	reader *bufio.Reader
	w      io.Writer
}

func NewTerminalPrompter(r io.Reader, w io.Writer) *TerminalPrompter {
	return &TerminalPrompter{reader: bufio.NewReader(r), w: w}
}

// ConfirmDelete prints a confirmation question and blocks for a single line
// of input. EOF counts as no.
func (p *TerminalPrompter) ConfirmDelete(ctx context.Context, label string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(p.w, "Delete %s? [y/N]\n> ", label); err != nil {
		return false, err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// TerminalNotifier prints error toasts to w, one per line.
type TerminalNotifier struct {
	w io.Writer
}

func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

func (n *TerminalNotifier) Error(msg string) {
	fmt.Fprintln(n.w, "error:", msg)
}
