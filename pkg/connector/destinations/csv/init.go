package csv

import (
	"github.com/ajitpratap0/carflow/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("csv", "Delimited text file with a header row, optionally compressed", NewCSVDestination)
}
