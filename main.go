package main

import "github.com/HugoGarcez/agentpromp/tools/cmd"

func main() {
	cmd.Execute()
}
