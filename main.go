package main

import (
	"fmt"
	"os"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/cli"
)

// main - is the entry point of the application. Commands load the config and logger themselves.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
