package main

import "github.com/bnema/esoctl/cmd"

func main() {
	cmd.Execute()
}
