package main

import (
	"os"

	"github.com/haroonyaqubi/task-flow-app/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
