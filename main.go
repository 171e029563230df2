package main

import "github.com/KaramelBytes/trendboard/cmd"

func main() {
	cmd.Execute()
}
