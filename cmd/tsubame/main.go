package main

import (
	"os"

	"github.com/ymakino/TsubameDB/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
