package main

import "github.com/sudevbasti/portfolio-assistant/cmd/chatctl/cmd"

func main() {
	cmd.Execute()
}
