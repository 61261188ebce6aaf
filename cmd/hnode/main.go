// Command hnode checks transfer payloads and generates Houdini assets for
// external nodes.
package main

import (
	"os"

	"github.com/luxalpa/houdini-node/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
