package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/store"
)

// itemsCommand creates the items command for editing a repository.
func (c *CLI) itemsCommand() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List, add, edit and delete stored items",
		Long: `List, add, edit and delete stored items.

Items live in the store given by --store: a file path (file:items.json),
redis://host:port/db or mongodb://host/db. The default comes from the config
file. The memory: store does not persist between invocations.`,
	}
	cmd.PersistentFlags().StringVar(&dsn, "store", "", "item store DSN (default from config)")

	cmd.AddCommand(c.itemsListCommand(&dsn))
	cmd.AddCommand(c.itemsAddCommand(&dsn))
	cmd.AddCommand(c.itemsLabelCommand(&dsn))
	cmd.AddCommand(c.itemsValueCommand(&dsn))
	cmd.AddCommand(c.itemsRemoveCommand(&dsn))

	return cmd
}

// withRepo opens the store named by dsn, runs fn and closes the store.
func (c *CLI) withRepo(ctx context.Context, dsn string, fn func(store.Repository) error) error {
	repo, err := c.openRepo(ctx, nil, dsn)
	if err != nil {
		return err
	}
	err = fn(repo)
	if cerr := repo.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close store: %w", cerr)
	}
	return err
}

// itemsListCommand creates the "items ls" subcommand.
func (c *CLI) itemsListCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd.Context(), *dsn, func(repo store.Repository) error {
				items, err := repo.All(cmd.Context())
				if err != nil {
					return err
				}
				printItems(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
}

// itemsAddCommand creates the "items add" subcommand.
func (c *CLI) itemsAddCommand(dsn *string) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "add <label> <value>",
		Short: "Add an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}
			if id == "" {
				id = uuid.NewString()
			}
			it := item.Raw{ID: id, Label: args[0], Value: value}
			return c.withRepo(cmd.Context(), *dsn, func(repo store.Repository) error {
				if err := repo.Create(cmd.Context(), it); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Added %s", StyleHighlight.Render(it.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "item ID (default: random UUID)")

	return cmd
}

// itemsLabelCommand creates the "items label" subcommand.
func (c *CLI) itemsLabelCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "label <id> <label>",
		Short: "Change an item's label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd.Context(), *dsn, func(repo store.Repository) error {
				if err := repo.EditLabel(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Updated %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}

// itemsValueCommand creates the "items value" subcommand.
func (c *CLI) itemsValueCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "value <id> <value>",
		Short: "Move an item to a new value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}
			return c.withRepo(cmd.Context(), *dsn, func(repo store.Repository) error {
				if err := repo.EditValue(cmd.Context(), args[0], value); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Updated %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}

// itemsRemoveCommand creates the "items rm" subcommand.
func (c *CLI) itemsRemoveCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Delete items",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(cmd.Context(), *dsn, func(repo store.Repository) error {
				for _, id := range args {
					if err := repo.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				printSuccess(cmd.OutOrStdout(), "Deleted %d item(s)", len(args))
				return nil
			})
		},
	}
}

// parseValue parses a command-line number.
func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid value %q: must be a number", s)
	}
	return v, nil
}

// printItems prints stored items as a table.
func printItems(w io.Writer, items []item.Raw) {
	if len(items) == 0 {
		printInfo(w, "No items")
		return
	}
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.ID, it.Label, formatNumber(it.Value)}
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Label", "Value"}, rows, 2))
}
