package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ajitpratap0/carflow/pkg/compression"
	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/logger"
	"github.com/ajitpratap0/carflow/pkg/models"
)

// CSVDestination writes a table as delimited text. The file is created or
// truncated by Initialize.
type CSVDestination struct {
	path   string
	comma  rune
	alg    compression.Algorithm
	file   *os.File
	stream io.WriteCloser
	writer *csv.Writer
	logger *zap.Logger
	wrote  bool
}

var _ core.Destination = (*CSVDestination)(nil)

// NewCSVDestination creates a CSV destination from the converter section of cfg
func NewCSVDestination(cfg *config.Config) (core.Destination, error) {
	comma, err := config.ParseDelimiter(cfg.Converter.Delimiter)
	if err != nil {
		return nil, err
	}
	alg, err := compression.Resolve(cfg.Converter.Compression, cfg.Converter.Output)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "converter.compression")
	}
	return &CSVDestination{
		path:  cfg.Converter.Output,
		comma: comma,
		alg:   alg,
	}, nil
}

// Name returns the connector name
func (d *CSVDestination) Name() string {
	return "csv"
}

// Initialize creates the output file
func (d *CSVDestination) Initialize(ctx context.Context) error {
	d.logger = logger.WithContext(ctx).With(zap.String("connector", d.Name()), zap.String("path", d.path))

	file, err := os.Create(d.path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to create output file").WithDetail("path", d.path)
	}
	d.file = file

	stream, err := compression.NewWriter(file, d.alg)
	if err != nil {
		_ = file.Close()
		d.file = nil
		return errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to create compressed output").WithDetail("path", d.path)
	}
	d.stream = stream

	d.writer = csv.NewWriter(stream)
	d.writer.Comma = d.comma
	return nil
}

// Write writes the header line followed by every row. A table without
// columns still produces an (empty) header line.
func (d *CSVDestination) Write(ctx context.Context, table *models.Table) error {
	if d.writer == nil {
		return errors.New(errors.ErrorTypeUnexpected, "destination not initialized")
	}

	if err := d.writeRecord(table.Columns); err != nil {
		return d.writeError(err)
	}
	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeUnexpected, "write cancelled")
		}
		if err := d.writeRecord(row); err != nil {
			return d.writeError(err)
		}
	}

	d.writer.Flush()
	if err := d.writer.Error(); err != nil {
		return d.writeError(err)
	}
	d.wrote = true

	d.logger.Debug("csv table written",
		zap.Int("rows", table.Len()),
		zap.String("compression", string(d.alg)))
	return nil
}

// writeRecord writes one line. encoding/csv renders a lone empty field as a
// blank line, which readers skip, so that case is written quoted.
func (d *CSVDestination) writeRecord(record []string) error {
	if len(record) != 1 || record[0] != "" {
		return d.writer.Write(record)
	}
	d.writer.Flush()
	if err := d.writer.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(d.stream, emptyFieldLine)
	return err
}

const emptyFieldLine = "\"\"\n"

func (d *CSVDestination) writeError(err error) error {
	return errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to write output").WithDetail("path", d.path)
}

// Outputs returns the output path once a table has been written
func (d *CSVDestination) Outputs() []string {
	if !d.wrote {
		return nil
	}
	return []string{d.path}
}

// Close flushes the compressor and closes the file
func (d *CSVDestination) Close(ctx context.Context) error {
	if d.file == nil {
		return nil
	}

	var firstErr error
	if d.writer != nil {
		d.writer.Flush()
		firstErr = d.writer.Error()
	}
	if d.stream != nil {
		if err := d.stream.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := d.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	d.file, d.stream, d.writer = nil, nil, nil

	if firstErr != nil {
		return errors.Wrap(fmt.Errorf("failed to close %s: %w", d.path, firstErr), errors.ErrorTypeUnexpected, "failed to finalize output")
	}
	return nil
}
