package main

import (
	"fmt"
	"os"

	"github.com/go-faster/errors"
)

// ============================================================================
// GCCDASH CLI: roster dashboard server and offline tools
// ============================================================================

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
