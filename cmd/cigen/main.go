package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cigen/internal/prompt"
)

func main() {
	os.Exit(runMain(newRootCmd(deps{Prompt: prompt.New()}), os.Stderr))
}

// runMain executes cmd and returns the process exit code. Errors raised
// before the logger exists, such as flag parsing, are printed to stderr.
func runMain(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var logged loggedError
	if !errors.As(err, &logged) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return 1
}
