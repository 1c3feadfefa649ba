package main

import (
	"os"

	"github.com/jwhyun/finbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
