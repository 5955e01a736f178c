// Package main is the entry point for beanrender CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/beancount-ledger/cmd/beanrender/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
