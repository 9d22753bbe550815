package chart

import (
	"github.com/ajitpratap0/carflow/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("chart", "One sorted category-count bar chart image per configured column", NewChartDestination)
}
