package main

import "github.com/mapcrowd/bundlework/cmd"

func main() {
	cmd.Execute()
}
