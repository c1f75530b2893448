package main

import "clipsync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
