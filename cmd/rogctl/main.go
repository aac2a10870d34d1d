package main

import "codeberg.org/mutker/rogctl/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
