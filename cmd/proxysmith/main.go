package main

import "proxysmith/internal/cli"

func main() {
	cli.Execute()
}
