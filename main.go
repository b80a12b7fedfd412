package main

import (
	"os"

	"SnapSweep/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
