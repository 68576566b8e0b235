// Command dotctl inspects a dot-file deployment from the terminal: dry-run
// classification of a filing request and read-only views of clients and
// filing activity.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	_ "time/tzdata"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
