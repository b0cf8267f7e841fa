package main

import (
	"os"

	"github.com/trotybot/wikirag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
