package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/housing-dpe/cmd/housing-dpe/commands"
	"git.home.luguber.info/inful/housing-dpe/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("housing-dpe"),
		kong.Description("Housing data-processing-and-evaluation pipeline"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.GitCommit, version.BuildTime),
		},
	)
	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
