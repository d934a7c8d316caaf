package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/pipeline"
)

// layoutOutput is the document written by the layout command.
type layoutOutput struct {
	Strategy      string            `json:"strategy"`
	Multiplier    int               `json:"multiplier"`
	UnitsPerPixel float64           `json:"unitsPerPixel"`
	Height        float64           `json:"height"`
	Rows          int               `json:"rows"`
	Items         []item.Positioned `json:"items"`
}

// layoutCommand creates the layout command for computing item positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		asTable bool
	)

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Compute item positions for a dataset",
		Long: `Compute item positions for a dataset.

The dataset may be JSON, YAML, TOML or CSV. Without a dataset the items are
read from the store given by --store (or the configured store).

Positions are printed as JSON, or as a table with --table. Use -o to write
the JSON document to a file instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flags.apply(&opts)
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), args, flags.store, opts, output, asTable)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to file instead of stdout")
	cmd.Flags().BoolVar(&asTable, "table", false, "print positions as a table")

	return cmd
}

// runLayout loads the items, computes one layout pass and prints it.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, args []string, dsn string, opts pipeline.Options, output string, asTable bool) error {
	repo, err := c.openRepo(ctx, args, dsn)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, repo, true)
	if err != nil {
		repo.Close()
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Layout(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("computed layout", "items", res.Stats.ItemCount, "rows", res.Stats.Rows)

	if asTable {
		fmt.Fprintln(w, layoutTable(res.Layout.Items))
		printStats(w, res.Stats.ItemCount, res.Stats.Rows, false)
		return nil
	}

	doc := layoutOutput{
		Strategy:      string(res.Layout.Strategy),
		Multiplier:    res.Mapper.Multiplier(),
		UnitsPerPixel: res.Mapper.UnitsPerPixel,
		Height:        res.Layout.Height,
		Rows:          res.Layout.Rows,
		Items:         res.Layout.Items,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = w.Write(data)
		return err
	}
	if err := afero.WriteFile(c.fs, output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess(w, "Layout written")
	printFile(w, output)
	return nil
}

// layoutTable renders placed items with their bounding boxes.
func layoutTable(items []item.Positioned) string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{
			it.ID,
			it.Label,
			formatNumber(it.Value),
			formatNumber(it.Left),
			formatNumber(it.Top),
			formatNumber(it.Width),
		}
	}
	return renderTable([]string{"ID", "Label", "Value", "Left", "Top", "Width"}, rows, 2, 3, 4, 5)
}
