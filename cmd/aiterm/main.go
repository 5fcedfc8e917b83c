package main

import "ai-terminal/internal/cli"

func main() {
	cli.Execute()
}
