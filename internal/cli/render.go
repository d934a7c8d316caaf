package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/matzehuels/numberline/pkg/pipeline"
)

// defaultOutputBase names outputs rendered from a store rather than a file.
const defaultOutputBase = appName

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	layoutFlags
	output      string // output file (single format) or base path (multiple)
	formats     string // comma-separated output formats
	title       string // caption drawn above the number line
	boxes       bool   // outline bounding boxes
	interactive bool   // emit hover hooks into SVG output
	noCache     bool   // bypass the artifact cache entirely
	refresh     bool   // re-render and overwrite cached artifacts
}

// renderCommand creates the render command for generating SVG, PNG, PDF and JSON output.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a number line to SVG, PNG, PDF or JSON",
		Long: `Render a number line to SVG, PNG, PDF or JSON.

With a single format, -o names the output file. With several formats, -o is a
base path and each output gets the format's extension. Without -o, outputs
are written next to the dataset.

Rendered artifacts are cached; an unchanged dataset renders instantly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args, formats, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "title drawn above the number line")
	cmd.Flags().BoolVar(&opts.boxes, "boxes", false, "outline item bounding boxes")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "add hover highlighting to SVG output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts and re-render")

	return cmd
}

// runRender lays out the items, renders every format and writes the files.
func (c *CLI) runRender(ctx context.Context, w io.Writer, args []string, formats []string, ro *renderOpts) error {
	repo, err := c.openRepo(ctx, args, ro.store)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, repo, ro.noCache)
	if err != nil {
		repo.Close()
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.baseOptions()
	ro.apply(&opts)
	opts.Formats = formats
	opts.Title = ro.title
	opts.Boxes = ro.boxes
	opts.Interactive = ro.interactive
	opts.Refresh = ro.refresh

	stop := c.startSpinner(ctx, "Rendering...")
	res, err := runner.Execute(ctx, opts)
	stop()
	if err != nil {
		return err
	}

	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	paths := outputPaths(ro.output, input, res.Formats())
	for _, format := range res.Formats() {
		path := paths[format]
		if err := afero.WriteFile(c.fs, path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.Logger.Debug("wrote artifact", "format", format, "path", path, "bytes", len(res.Artifacts[format]))
	}

	printSuccess(w, "Rendered %s", strings.Join(res.Formats(), ", "))
	printStats(w, res.Stats.ItemCount, res.Stats.Rows, res.CacheInfo.RenderHit)
	for _, format := range res.Formats() {
		printFile(w, paths[format])
	}
	return nil
}

// outputPaths maps each format to the file it is written to. A single
// format with an explicit output uses that path unchanged.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, format := range formats {
		paths[format] = base + "." + format
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultOutputBase
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
