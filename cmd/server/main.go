package main

import "github.com/buildercircle/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
