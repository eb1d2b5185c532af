package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sugarsmax/lastfm-discoveries/internal/config"
	"github.com/sugarsmax/lastfm-discoveries/internal/tui"
)

func main() {
	var (
		catalogFlag = flag.String("catalog", "", "Catalog file path (overrides config)")
		configFlag  = flag.String("config", "", "Path to config file")
	)
	flag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	path := settings.CatalogPath
	if *catalogFlag != "" {
		path = *catalogFlag
	}

	if err := tui.Run(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
