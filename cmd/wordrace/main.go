package main

import "github.com/wordrace/server/internal/cli"

func main() {
	cli.Execute()
}
