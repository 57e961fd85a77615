package main

import (
	"os"

	"github.com/updaun/postkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
