package main

import (
	"fmt"
	"os"
)

const (
	appName     = "sleeptimer"
	displayName = "Sleep Timer"
	appID       = "io.sleeptimer.app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
