package main

import "github.com/mydehq/otr/internal/cli"

func main() {
	cli.Execute()
}
