package main

import "github.com/forPelevin/vidfill/internal/cli"

func main() {
	cli.Main()
}
