package main

import (
	"Sonicbar/cmd"
)

func main() {
	cmd.Execute()
}
