package main

import (
	"log"
	"os"
)

func main() {
	// Diagnostics go to stderr so stdout stays valid JSON
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
