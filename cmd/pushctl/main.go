package main

import (
	"fmt"
	"os"

	"github.com/tinywideclouds/go-push-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
