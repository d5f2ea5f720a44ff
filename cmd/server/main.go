package main

import "github.com/questboard/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
