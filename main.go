package main

import (
	"os"

	"github.com/gThomas99/controllers/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
