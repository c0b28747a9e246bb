package system

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/tui"
)

type TuiCmd struct {
	ProbeInterval time.Duration `help:"How often to re-check connectivity to a remote database." default:"30s"`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Snapshot before the dashboard can change anything.
	ctx.PerformAutomaticBackup()

	s, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	if ctx.Monitor != nil {
		monitorCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go ctx.Monitor.Run(monitorCtx, c.ProbeInterval)
	}

	m := tui.NewModel(s, ctx.Now)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("%s dashboard failed: %w", constants.AppName, err)
	}
	return nil
}
