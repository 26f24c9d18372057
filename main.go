package main

import (
	"os"

	"github.com/tashasho/MCP-Server-BNV/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
