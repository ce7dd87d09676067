// Command weblib normalizes URLs and HTTP form values from the command line.
package main

import (
	"os"

	"github.com/lorien/weblib/cliout"
	"github.com/lorien/weblib/cmd/weblib/commands"
	"github.com/lorien/weblib/version"
)

// Set via ldflags at build time.
var (
	Version   = "0.0.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	info := version.New("weblib")
	info.Version = Version
	info.BuildDate = BuildDate
	info.GitCommit = GitCommit

	if err := commands.NewRootCommand(info).Execute(); err != nil {
		cliout.SetOutput(os.Stderr)
		cliout.Error("%v", err)
		os.Exit(1)
	}
}
