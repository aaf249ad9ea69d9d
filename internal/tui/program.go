package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows m full screen until the user quits or ctx is cancelled.
//
// Focus reporting is enabled so the model sees terminal focus changes.
// prompter, when not nil, is attached for the lifetime of the program.
func Run(ctx context.Context, m Model, prompter *Prompter, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	}, opts...)

	p := tea.NewProgram(m, opts...)
	if prompter != nil {
		prompter.Attach(p)
		defer prompter.Detach()
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run terminal dashboard: %w", err)
	}
	return nil
}
