package main

import "toolupdater/internal/cli"

func main() {
	cli.Execute()
}
