// Package core defines the connector contracts shared by sources,
// destinations and the pipeline engine.
package core

import (
	"context"

	"github.com/ajitpratap0/carflow/pkg/models"
)

// ConnectorType represents the type of connector
type ConnectorType string

const (
	ConnectorTypeSource      ConnectorType = "source"
	ConnectorTypeDestination ConnectorType = "destination"
)

// Source reads a whole dataset. Sources are single-use: Initialize, Read
// once, Close.
type Source interface {
	// Name returns the registered connector name
	Name() string
	// Initialize opens the underlying input
	Initialize(ctx context.Context) error
	// Read returns the dataset
	Read(ctx context.Context) (*models.Table, error)
	// Close releases the input. It is safe to call after a failed Initialize.
	Close(ctx context.Context) error
}

// Destination writes a dataset.
type Destination interface {
	// Name returns the registered connector name
	Name() string
	// Initialize prepares the output (creates files, directories)
	Initialize(ctx context.Context) error
	// Write persists table
	Write(ctx context.Context, table *models.Table) error
	// Outputs lists the files written so far
	Outputs() []string
	// Close flushes and releases the output
	Close(ctx context.Context) error
}

// Transform modifies a table between source and destination
type Transform func(ctx context.Context, table *models.Table) (*models.Table, error)
