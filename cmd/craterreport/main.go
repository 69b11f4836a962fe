// Command craterreport generates root-cause regression reports for crater
// experiments.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/craterreport/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own ExitErrors through the output formatter.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
