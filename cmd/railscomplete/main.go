package main

import (
	"os"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/cli"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	os.Exit(cli.Main(os.Args[1:]))
}
