package main

import (
	"os"

	"github.com/api-sage/ledger-engine/src/cmd/ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
