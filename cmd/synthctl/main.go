package main

import (
	"fmt"
	"os"

	"github.com/leandrodaf/synthsync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "synthctl:", err)
		os.Exit(1)
	}
}
