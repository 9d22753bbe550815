package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/carflow/pkg/config"
)

// ExampleNewConfig shows the converter defaults.
func ExampleNewConfig() {
	cfg := config.NewConfig()

	fmt.Printf("Converter: %s -> %s (key %q, excluding %v)\n",
		cfg.Converter.Input, cfg.Converter.Output, cfg.Converter.ArrayKey, cfg.Converter.Exclude)
	fmt.Printf("Visualizer: %s, delimiter %q\n", cfg.Visualizer.Input, cfg.Visualizer.Delimiter)
	fmt.Printf("Charts: %v\n", cfg.Visualizer.Columns())

	// Output:
	// Converter: data.json -> data.csv (key "cars", excluding [image])
	// Visualizer: data.csv, delimiter ","
	// Charts: [manufacturer countryOfOrigin color]
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.NewConfig()
	cfg.Visualizer.Delimiter = ";"
	cfg.Visualizer.Format = "svg"

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Configuration is valid!")

	cfg.Visualizer.Delimiter = ";;"
	fmt.Println(cfg.Validate())

	// Output:
	// Configuration is valid!
	// config: visualizer.delimiter: config: delimiter must be a single character, got ";;"
}
