package main

import (
	"os"

	"ui_automation/presentation/cli"
)

func main() {
	os.Exit(cli.Execute())
}
