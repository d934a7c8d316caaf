package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/numberline/pkg/layout"
)

// viewCommand creates the view command for browsing a layout in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "view [dataset]",
		Short: "Browse a number line in the terminal",
		Long: `Browse a number line in the terminal.

Keys: 1, 2, 5 and 0 select the scale; s switches between the cascade and
shelf strategies; arrow keys (or h/j/k/l) move the selection; d deletes the
selected item from the store; r reloads; q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args, &flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, args []string, flags *layoutFlags) error {
	opts := c.baseOptions()
	flags.apply(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	strategy, err := layout.ParseStrategy(opts.Strategy)
	if err != nil {
		return err
	}

	repo, err := c.openRepo(ctx, args, flags.store)
	if err != nil {
		return err
	}
	defer repo.Close()

	m := NewViewerModel(ctx, repo, opts.Multiplier, strategy)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
