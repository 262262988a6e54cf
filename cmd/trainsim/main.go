// Command trainsim simulates, replays and serves railway grid levels.
package main

import (
	"fmt"
	"os"

	"github.com/MZiaRAwan/PF-Project/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
