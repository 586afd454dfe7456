package main

import "framecore/cmd"

func main() {
	cmd.Execute()
}
