package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/models"
)

type stubSource struct{}

func (stubSource) Name() string { return "stub" }
func (stubSource) Initialize(ctx context.Context) error { return nil }
func (stubSource) Read(ctx context.Context) (*models.Table, error) {
	return models.NewTable(nil), nil
}
func (stubSource) Close(ctx context.Context) error { return nil }

func TestRegistry_Sources(t *testing.T) {
	r := NewRegistry()
	factory := func(cfg *config.Config) (core.Source, error) { return stubSource{}, nil }

	require.NoError(t, r.RegisterSource("stub", "a stub", factory))
	err := r.RegisterSource("stub", "again", factory)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	src, err := r.CreateSource("stub", config.NewConfig())
	require.NoError(t, err)
	assert.Equal(t, "stub", src.Name())

	info, ok := r.Info(core.ConnectorTypeSource, "stub")
	require.True(t, ok)
	assert.Equal(t, "a stub", info.Description)

	_, err = r.CreateSource("missing", config.NewConfig())
	assert.Error(t, err)
}

func TestRegistry_FactoryError(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterDestination("broken", "", func(cfg *config.Config) (core.Destination, error) {
		return nil, fmt.Errorf("bad delimiter")
	}))

	_, err := r.CreateDestination("broken", config.NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad delimiter")
}

func TestRegistry_ListSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"json", "csv"} {
		require.NoError(t, r.RegisterSource(name, "", func(cfg *config.Config) (core.Source, error) { return stubSource{}, nil }))
	}
	assert.Equal(t, []string{"csv", "json"}, r.ListSources())
	assert.Empty(t, r.ListDestinations())
}
