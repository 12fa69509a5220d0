package main

import (
	"os"

	"github.com/aman-zulfiqar/credit-program/cmd/creditctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
