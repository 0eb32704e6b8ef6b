package main

import (
	"os"

	"github.com/git-pkgs/deprecier/cmd/deprecier/cli"
)

// provided as a build-time argument
var version = "dev"

func main() {
	os.Exit(cli.Run(cli.Identification{Name: "deprecier", Version: version}, os.Args[1:]))
}
