package main

import (
	"TuneVault/cmd"
)

func main() {
	cmd.Execute()
}
