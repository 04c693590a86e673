package cli

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvillar/layoutpdf/render"
	"github.com/lvillar/layoutpdf/vars"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string   // output PDF path
	varsFile string   // JSON object of variable values
	sets     []string // name=value overrides
	batch    string   // JSON array of variable objects, one page each
	dpi      float64  // resolution element coordinates are in
	preview  bool     // open the result in the system viewer
	samples  bool     // fill unset variables with sample values
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <template.json>",
		Short: "Render a template to PDF",
		Long: `Render a template JSON file ("-" for stdin) to PDF.

Variables come from --vars, then --set. With --batch, every record in the
file becomes one page of the same PDF. Elements whose image or QR code cannot
be produced are skipped with a warning; the rest of the page still renders.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <template name>.pdf)")
	cmd.Flags().StringVar(&opts.varsFile, "vars", "", "JSON file with variable values")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "set a variable (name=value), repeatable")
	cmd.Flags().StringVar(&opts.batch, "batch", "", "JSON file with an array of variable objects")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 0, "resolution of element coordinates (default from config)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "open the PDF in the system viewer instead of saving")
	cmd.Flags().BoolVar(&opts.samples, "samples", false, "use sample values for variables left unset")

	return cmd
}

func runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	doc, err := readTemplate(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	base := map[string]string{}
	if opts.varsFile != "" {
		if base, err = readValues(opts.varsFile); err != nil {
			return err
		}
	}
	sets, err := parseAssignments(opts.sets)
	if err != nil {
		return err
	}
	maps.Copy(base, sets)

	records := []map[string]string{base}
	if opts.batch != "" {
		if records, err = readRecords(opts.batch); err != nil {
			return err
		}
		for _, r := range records {
			for k, v := range base {
				if _, ok := r[k]; !ok {
					r[k] = v
				}
			}
		}
	}

	samples := vars.Samples(doc.Variables, time.Now())
	for i, r := range records {
		if opts.samples {
			for k, v := range samples {
				if r[k] == "" {
					r[k] = v
				}
			}
		}
		resolved, missing := vars.Resolve(doc.Variables, r)
		if len(missing) > 0 {
			return fmt.Errorf("record %d: missing required variables: %s", i, strings.Join(missing, ", "))
		}
		records[i] = resolved
	}

	r, err := newRenderer(cfg, logger)
	if err != nil {
		return err
	}
	target := render.Target{DPI: cfg.Render.DPI, Action: render.ActionSave, Filename: opts.output}
	if opts.dpi > 0 {
		target.DPI = opts.dpi
	}
	if opts.preview {
		target.Action = render.ActionPreview
	}

	prog := newProgress(logger)
	res := r.RenderBatch(ctx, doc, records, target)
	if !res.OK {
		return fmt.Errorf("render failed: %s", res.Message)
	}
	for _, sk := range res.Skipped {
		logger.Warn("element skipped", "element", sk.ElementID, "reason", sk.Reason)
	}
	prog.done(fmt.Sprintf("Rendered %d page(s) to %s", res.Pages, res.Path))
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}
