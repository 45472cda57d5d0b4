// Command sonido-modal identifies modal frequencies and damping ratios from
// acceleration records.
package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-modal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
