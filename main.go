package main

import (
	"fmt"
	"os"

	"clipbot/cli"
	"clipbot/config"
)

func main() {
	config.LoadEnv()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
