package main

import (
	"os"

	"github.com/JaimeStill/propensity/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
