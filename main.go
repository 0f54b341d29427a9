package main

import "github.com/llegregam/isoplot/cmd"

func main() {
	cmd.Execute()
}
