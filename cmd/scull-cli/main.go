package main

import (
	cmd "github.com/rtbo/scull/cmd/scull-cli/modules"
)

func main() {
	cmd.Execute()
}
