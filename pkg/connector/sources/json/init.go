package json

import (
	"github.com/ajitpratap0/carflow/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("json", "JSON document with a top-level record array, flattened to columns", NewJSONSource)
}
