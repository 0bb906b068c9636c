package main

import "github.com/nathanhack/eccsweep/cmd"

func main() {
	cmd.Execute()
}
