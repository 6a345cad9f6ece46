package main

import (
	"os"

	"github.com/zantac/OSN/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
