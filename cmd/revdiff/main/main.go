package main

import (
	"fmt"
	"os"

	"github.com/revdiff/revdiff/cmd/revdiff"
	"github.com/revdiff/revdiff/pkg/style"
)

func main() {
	rootCmd := revdiff.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
