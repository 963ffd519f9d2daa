package main

import "github.com/greenwatch/greenwatch/cmd/greenwatch/cmd"

func main() {
	cmd.Execute()
}
