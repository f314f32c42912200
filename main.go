package main

import "imgopt/cmd"

func main() {
	cmd.Execute()
}
