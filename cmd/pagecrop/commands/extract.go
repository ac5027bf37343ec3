package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pagecrop/internal/pipeline"
)

// ExtractCmd implements the 'extract' command: one page, written straight to OUT.
type ExtractCmd struct {
	Source string `arg:"" help:"Source PDF" type:"path"`
	Page   int    `arg:"" help:"Page number to extract"`
	Out    string `arg:"" help:"Output PDF for the single page" type:"path"`

	CropFlags `embed:""`

	Resolution int  `help:"Ghostscript output resolution in dpi"`
	Trace      bool `help:"Log every Ghostscript invocation with its output"`
}

func (e *ExtractCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	cfg.Job.Source = e.Source
	cfg.Job.Destination = e.Out
	cfg.Job.FirstPage = &e.Page
	cfg.Job.LastPage = &e.Page
	cfg.Workspace.Clean = true
	if err := e.CropFlags.apply(&cfg.Job); err != nil {
		return err
	}
	if e.Resolution > 0 {
		cfg.Ghostscript.Resolution = e.Resolution
	}
	if e.Trace {
		cfg.Logging.Trace = true
	}
	logger := root.newLogger(g.stderr(), cfg)

	o, err := pipeline.New(cfg, append([]pipeline.Option{pipeline.WithLogger(logger)}, g.Options...)...)
	if err != nil {
		return err
	}
	defer func() { _ = o.Close() }()

	if err := o.ExtractSingle(g.context(), e.Page, e.Out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.stdout(), "Wrote page %d to %s\n", e.Page, e.Out)
	return nil
}
