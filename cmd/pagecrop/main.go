package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagecrop/cmd/pagecrop/commands"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("pagecrop"),
		kong.Description("Extract, crop and merge PDF pages with Ghostscript."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := parser.Run(&commands.Global{Ctx: ctx, Stdout: os.Stdout, Stderr: os.Stderr}, &cli)
	stop()
	if err != nil {
		perrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
