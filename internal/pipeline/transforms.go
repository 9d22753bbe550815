package pipeline

import (
	"context"

	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/models"
)

// ExcludeColumns returns a transform that drops the named columns. Names
// match whole flattened column names: excluding "image" keeps "image.url".
// Absent names are ignored.
func ExcludeColumns(names ...string) core.Transform {
	return func(ctx context.Context, table *models.Table) (*models.Table, error) {
		table.DropColumns(names...)
		return table, nil
	}
}
