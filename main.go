package main

import "wirthmage/cmd"

func main() {
	cmd.Execute()
}
