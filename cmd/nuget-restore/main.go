package main

import "nuget-restore/internal/cli"

func main() {
	cli.Execute()
}
