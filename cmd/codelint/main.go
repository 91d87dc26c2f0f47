// Command codelint runs a local code-review analysis over a project
// directory and reports the normalized issues found.
package main

import (
	"fmt"
	"os"

	"github.com/codelintio/codelint/internal/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
