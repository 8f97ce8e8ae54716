package main

import "vidcompose/internal/cli"

func main() {
	cli.Execute()
}
