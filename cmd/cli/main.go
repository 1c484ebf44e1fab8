package main

import (
	"github.com/hferris/tictactoe-go/internal/cli"
)

func main() {
	cli.Execute()
}
