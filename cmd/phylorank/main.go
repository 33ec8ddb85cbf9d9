package main

import "phylorank/cmd/phylorank/cmd"

func main() {
	cmd.Execute()
}
