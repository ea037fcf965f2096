// Command molgraph is the CLI for converting molecular structure streams
// into attributed graphs.
package main

import (
	"os"

	"github.com/turtacn/MolGraph-Pipeline/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
