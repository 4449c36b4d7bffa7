// Command pend stores content-addressed blobs and an undoable snapshot
// chain on disk.
package main

import (
	"os"

	"github.com/roach88/pend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
