package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pagecrop/internal/config"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite an existing job file"`
	Path  string `arg:"" optional:"" help:"Where to write the job file (default: --config or pagecrop.yaml)" type:"path"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := i.Path
	if path == "" {
		path = root.Config
	}
	if path == "" {
		path = "pagecrop.yaml"
	}
	out := g.stdout()
	_, _ = fmt.Fprintf(out, "Writing example job to %s\n", path)
	if err := config.Init(path, i.Force); err != nil {
		return perrors.Wrap(err, perrors.CategoryConfig, perrors.SeverityFatal, "init failed").WithContext("path", path)
	}
	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}
