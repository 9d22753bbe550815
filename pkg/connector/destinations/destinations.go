// Package destinations links every destination connector into the registry
package destinations

import (
	// Import all destination connectors to trigger init() registration
	_ "github.com/ajitpratap0/carflow/pkg/connector/destinations/chart"
	_ "github.com/ajitpratap0/carflow/pkg/connector/destinations/csv"
)
