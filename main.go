package main

import "github.com/kozaktomas/event-report/cmd"

func main() {
	cmd.Execute()
}
