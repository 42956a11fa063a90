package main

import "github.com/mcoot/boardbank/internal/cli"

func main() {
	cli.Execute()
}
