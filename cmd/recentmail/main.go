package main

import (
	"fmt"
	"io"
	"os"
)

// version is set at build time.
var version = "dev"

func main() {
	os.Exit(exitCode(os.Stderr, newRootCmd(version).Execute()))
}

// exitCode reports err as a single plain line; the stage that failed has
// already logged it with its attributes.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(w, "recentmail: %v\n", err)
	return 1
}
