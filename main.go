package main

import "github.com/KaramelBytes/salesstat/cmd"

func main() {
	cmd.Execute()
}
