package main

import "perfeval/internal/app/cli"

func main() {
	cli.Execute()
}
