// seek is a local search engine over browser tabs, bookmarks, history,
// downloads and top sites.
package main

import (
	"os"

	"github.com/corey/seek/cmd/seek/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
