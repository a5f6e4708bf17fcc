package main

import (
	"os"

	"github.com/newhook/flagtrack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
