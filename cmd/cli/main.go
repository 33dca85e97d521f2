package main

import "github.com/mesh-codec/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
