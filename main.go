package main

import "m3uforge/cmd"

func main() {
	cmd.Execute()
}
