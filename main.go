// ABOUTME: Entry point for the safepulse CLI
// ABOUTME: Command-line client for the SafePulse crime reporting backend

package main

import (
	"fmt"
	"os"

	"github.com/markalston/safepulse-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
