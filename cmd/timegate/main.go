package main

import (
	"os"
	_ "time/tzdata" // plan timezones resolve without a system zoneinfo

	"github.com/dotcommander/timegate/internal/commands"
)

// version is set via ldflags: -X main.version=v1.0.0
var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
