package main

import (
	"fmt"
	"os"

	"github.com/spec-kit/ops-desk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ops-desk:", err)
		os.Exit(1)
	}
}
