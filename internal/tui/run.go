package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/passbook/internal/report"
	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the browser in the alternate screen until the user quits or ctx
// is canceled.
func Run(ctx context.Context, r report.PassReport, opts Options) error {
	p := tea.NewProgram(New(r, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run pass browser: %w", err)
	}
	return nil
}
