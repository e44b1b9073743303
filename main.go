package main

import (
	"shelfsync/cmd"
)

var execute = cmd.Execute

func main() {
	execute()
}
