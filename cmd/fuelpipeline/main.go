package main

import (
	"flag"
	"os"
	"strings"

	"fuelcli/internal/app"
)

func main() {
	configFile := flag.String("config", "", "path to YAML configuration (defaults to FUEL_CONFIG_FILE or fuelcli.yaml)")
	steps := flag.String("steps", "", "comma separated steps to run: expand,enrich,rank (defaults to all)")
	flag.Parse()

	os.Exit(app.Main(app.Options{
		Command:    "fuelpipeline",
		ConfigFile: *configFile,
		Steps:      parseSteps(*steps),
	}))
}

// parseSteps splits a comma separated list, dropping blanks.
func parseSteps(value string) []string {
	var steps []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}
