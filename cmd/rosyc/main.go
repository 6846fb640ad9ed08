package main

import (
	"os"

	"github.com/rosy-lang/rosyc/cmd/rosyc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
