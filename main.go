package main

import "github.com/valpere/mvtfilter/cmd"

func main() {
	cmd.Execute()
}
