package main

import (
	"github.com/rokelvisar/npm-agent/internal/cli"
)

func main() {
	cli.Execute()
}
