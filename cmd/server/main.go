package main

import (
	"os"

	"github.com/logplatform/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
