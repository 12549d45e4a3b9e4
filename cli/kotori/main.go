package main

import (
	"os"

	kotoricmder "github.com/papercomputeco/kotori/cmd/kotori"
)

func main() {
	cmd := kotoricmder.NewKotoriCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
