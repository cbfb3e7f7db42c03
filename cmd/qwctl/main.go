// Command qwctl runs maintenance and pipeline jobs against the quantumwork
// database: migrations, backup and restore, and the one-shot job update.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
