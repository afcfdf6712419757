package main

import (
	"github.com/projectdiscovery/clusterx/internal/runner"
	"github.com/projectdiscovery/gologger"
)

func main() {
	cliOpts := runner.ParseFlags()

	if err := runner.Execute(cliOpts); err != nil {
		gologger.Fatal().Msgf("%s mode failed: %v", cliOpts.Mode, err)
	}
}
