package main

import "github.com/bryanchriswhite/FocusBridge/cmd/focusbridge/commands"

func main() {
	commands.Execute()
}
