package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DeletePrompt is the question asked before a workflow is removed.
const DeletePrompt = "Delete this workflow?"

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm approves every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// NeverConfirm declines every prompt.
var NeverConfirm Confirmer = ConfirmFunc(func(string) bool { return false })

// PromptConfirmer writes the prompt to out and reads one line from in. Only
// "y" or "yes" (any case) confirm; EOF declines.
func PromptConfirmer(in io.Reader, out io.Writer) Confirmer {
	reader := bufio.NewReader(in)
	return ConfirmFunc(func(prompt string) bool {
		_, _ = fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
