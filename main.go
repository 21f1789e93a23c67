package main

import (
	"jukeboxd/cmd"
)

func main() {
	cmd.Execute()
}
