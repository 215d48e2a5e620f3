package main

import (
	"os"

	"github.com/employee-lifecycle/portal/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
