// Command pcexpand writes the postcode lookup from the range and region area tables.
package main

import (
	"flag"
	"os"

	"fuelcli/internal/app"
	"fuelcli/internal/operations"
)

func main() {
	configFile := flag.String("config", "", "path to YAML configuration")
	flag.Parse()

	os.Exit(app.Main(app.Options{
		Command:    "pcexpand",
		ConfigFile: *configFile,
		Steps:      []string{operations.StageIDExpand},
	}))
}
