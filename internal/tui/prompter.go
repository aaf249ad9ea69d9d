package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoTerminal is returned by [Prompter.Confirm] when no program is attached.
var ErrNoTerminal = errors.New("no terminal attached")

// confirmMsg asks the model to show a y/N prompt. reply is buffered so the
// model never blocks answering it.
type confirmMsg struct {
	prompt string
	reply  chan bool
}

// Prompter is a controller confirmer that asks on the terminal.
//
// Confirm blocks the calling action until the user answers in the running
// program or ctx ends.
type Prompter struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewPrompter creates a Prompter with no program attached.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// Attach routes prompts to p.
func (pr *Prompter) Attach(p *tea.Program) {
	pr.attach(p.Send)
}

func (pr *Prompter) attach(send func(tea.Msg)) {
	pr.mu.Lock()
	pr.send = send
	pr.mu.Unlock()
}

// Detach stops routing prompts; later calls to Confirm fail.
func (pr *Prompter) Detach() {
	pr.attach(nil)
}

// Confirm shows prompt and reports whether the user answered yes.
func (pr *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	pr.mu.Lock()
	send := pr.send
	pr.mu.Unlock()
	if send == nil {
		return false, ErrNoTerminal
	}

	reply := make(chan bool, 1)
	send(confirmMsg{prompt: prompt, reply: reply})

	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
