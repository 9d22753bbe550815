package json

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ajitpratap0/carflow/pkg/compression"
	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/flatten"
	jsonutil "github.com/ajitpratap0/carflow/pkg/json"
	"github.com/ajitpratap0/carflow/pkg/logger"
	"github.com/ajitpratap0/carflow/pkg/models"
)

// JSONSource reads the record array of a JSON document and flattens it
// into a table.
type JSONSource struct {
	config config.ConverterConfig
	file   *os.File
	alg    compression.Algorithm
	logger *zap.Logger
}

var _ core.Source = (*JSONSource)(nil)

// NewJSONSource creates a JSON source from the converter section of cfg
func NewJSONSource(cfg *config.Config) (core.Source, error) {
	alg, err := compression.Resolve(cfg.Converter.Compression, cfg.Converter.Input)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "converter.compression")
	}
	return &JSONSource{
		config: cfg.Converter,
		alg:    alg,
	}, nil
}

// Name returns the connector name
func (s *JSONSource) Name() string {
	return "json"
}

// Initialize opens the input file
func (s *JSONSource) Initialize(ctx context.Context) error {
	s.logger = logger.WithContext(ctx).With(zap.String("connector", s.Name()), zap.String("path", s.config.Input))

	file, err := os.Open(s.config.Input)
	if err != nil {
		return errors.Classify(err, s.config.Input)
	}
	s.file = file
	return nil
}

// Read decodes the document and returns the flattened records. A document
// without the records key, or with a null one, gives an empty table.
func (s *JSONSource) Read(ctx context.Context) (*models.Table, error) {
	if s.file == nil {
		return nil, errors.New(errors.ErrorTypeUnexpected, "source not initialized")
	}
	path := s.config.Input

	r, err := compression.NewReader(s.file, s.alg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to open compressed input").WithDetail("path", path)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to read input").WithDetail("path", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnexpected, "read cancelled")
	}

	doc, err := jsonutil.DecodeOrdered(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInvalidFormat, "invalid JSON format").WithDetail("path", path)
	}

	objects, xerr := s.extract(doc)
	if xerr != nil {
		return nil, xerr.WithDetail("path", path)
	}

	records := make([]*models.Record, len(objects))
	for i, obj := range objects {
		records[i] = flatten.Record(obj, s.config.Separator)
	}
	table := flatten.Table(records)

	s.logger.Debug("json document flattened",
		zap.Int("records", table.Len()),
		zap.Int("columns", len(table.Columns)))
	return table, nil
}

func (s *JSONSource) extract(doc interface{}) ([]jsonutil.Object, *errors.Error) {
	root, ok := doc.(jsonutil.Object)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeUnexpected, "top-level JSON value must be an object, got %s", kindOf(doc))
	}

	raw, ok := root.Get(s.config.ArrayKey)
	if !ok || raw == nil {
		s.logger.Warn("records key not found, writing header only", zap.String("key", s.config.ArrayKey))
		return nil, nil
	}

	arr, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeUnexpected, "%q must be an array, got %s", s.config.ArrayKey, kindOf(raw))
	}

	objects := make([]jsonutil.Object, len(arr))
	for i, elem := range arr {
		obj, ok := elem.(jsonutil.Object)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeUnexpected, "%s[%d] must be an object, got %s", s.config.ArrayKey, i, kindOf(elem))
		}
		objects[i] = obj
	}
	return objects, nil
}

// Close closes the input file
func (s *JSONSource) Close(ctx context.Context) error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", s.config.Input, err)
	}
	return nil
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case jsonutil.Object:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
