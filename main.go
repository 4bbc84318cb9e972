package main

import "github.com/theirongolddev/subtrack/cmd"

func main() {
	cmd.Execute()
}
