// Package sources links every source connector into the registry
package sources

import (
	// Import all source connectors to trigger init() registration
	_ "github.com/ajitpratap0/carflow/pkg/connector/sources/csv"
	_ "github.com/ajitpratap0/carflow/pkg/connector/sources/json"
)
