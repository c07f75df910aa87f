package main

import "slurmvision/internal/cli"

func main() {
	cli.Execute()
}
