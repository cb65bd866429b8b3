package main

import "github.com/tanq16/playlistdl/cmd"

func main() {
	cmd.Execute()
}
