// Command pricerank ranks the combined table within each week and month.
//
// It reads the combined artifact left by mthenrich, so enrich must have run first.
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
		Command:    "pricerank",
		ConfigFile: *configFile,
		Steps:      []string{operations.StageIDRank},
	}))
}
