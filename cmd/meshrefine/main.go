package main

import "github.com/arl/meshquality/cmd/meshrefine/cmd"

func main() {
	cmd.Execute()
}
