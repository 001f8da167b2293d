package main

import (
	"wallet-credit-scores/internal/cli"
)

func main() {
	cli.Execute()
}
