package main

import (
	"os"

	"github.com/docgpt-ai/docgpt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
