package main

import "martianoff/stjs/cmd/stjs/commands"

func main() {
	commands.Execute()
}
