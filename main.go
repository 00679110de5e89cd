package main

import "grocery/internal/commands"

func main() {
	commands.Execute()
}
