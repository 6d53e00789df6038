// Command playbin-probe opens a media source headlessly, prerolls it and
// prints its duration and tracks. With --play it plays to the end.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
