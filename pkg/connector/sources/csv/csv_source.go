package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ajitpratap0/carflow/pkg/compression"
	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/connector/registry"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/logger"
	"github.com/ajitpratap0/carflow/pkg/models"
)

func init() {
	_ = registry.RegisterSource("csv", "Delimited text table with a header row", NewCSVSource)
}

// CSVSource reads a delimited table with a header row
type CSVSource struct {
	config config.VisualizerConfig
	comma  rune
	alg    compression.Algorithm
	file   *os.File
	logger *zap.Logger
}

var _ core.Source = (*CSVSource)(nil)

// NewCSVSource creates a CSV source from the visualizer section of cfg
func NewCSVSource(cfg *config.Config) (core.Source, error) {
	comma, err := config.ParseDelimiter(cfg.Visualizer.Delimiter)
	if err != nil {
		return nil, err
	}
	alg, err := compression.Resolve(cfg.Visualizer.Compression, cfg.Visualizer.Input)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "visualizer.compression")
	}
	return &CSVSource{
		config: cfg.Visualizer,
		comma:  comma,
		alg:    alg,
	}, nil
}

// Name returns the connector name
func (s *CSVSource) Name() string {
	return "csv"
}

// Initialize opens the input file
func (s *CSVSource) Initialize(ctx context.Context) error {
	s.logger = logger.WithContext(ctx).With(zap.String("connector", s.Name()), zap.String("path", s.config.Input))

	file, err := os.Open(s.config.Input)
	if err != nil {
		return errors.Classify(err, s.config.Input)
	}
	s.file = file
	return nil
}

// Read parses the whole table. Rows shorter than the header are padded with
// empty cells; rows longer than the header are a parse error. A bare quote
// inside an unquoted field is kept as text, but a quoted field still open at
// end of input is a parse error.
func (s *CSVSource) Read(ctx context.Context) (*models.Table, error) {
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

	data = bytes.TrimPrefix(data, byteOrderMark)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = s.comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrorTypeUnexpected, "no columns to parse from file").WithDetail("path", path)
	}
	if err != nil {
		return nil, s.readError(err)
	}
	lastLine, lastCol := reader.FieldPos(len(header) - 1)

	table := models.NewTable(header)
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeUnexpected, "read cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, s.readError(err)
		}

		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, errors.Newf(errors.ErrorTypeParse, "expected %d fields in line %d, saw %d", len(header), line, len(record)).
				WithDetail("path", path)
		}
		lastLine, lastCol = reader.FieldPos(len(record) - 1)
		for len(record) < len(header) {
			record = append(record, "")
		}
		table.Rows = append(table.Rows, record)
	}

	// with LazyQuotes an unclosed quoted field swallows the rest of the
	// input, so it can only be the last field read
	if unclosedQuote(data, lastLine, lastCol, s.comma) {
		return nil, errors.Newf(errors.ErrorTypeParse, "EOF inside string starting at line %d", lastLine).
			WithDetail("path", path)
	}

	s.logger.Debug("csv table parsed",
		zap.Int("rows", table.Len()),
		zap.Int("columns", len(table.Columns)))
	return table, nil
}

var byteOrderMark = []byte("\ufeff")

// unclosedQuote reports whether the field starting at the 1-based line and
// byte column of data opens a quote that is never closed.
func unclosedQuote(data []byte, line, col int, comma rune) bool {
	offset := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(data[offset:], '\n')
		if i < 0 {
			return false
		}
		offset += i + 1
	}
	offset += col - 1
	if offset < 0 || offset >= len(data) || data[offset] != '"' {
		return false
	}

	field := data[offset+1:]
	for i := 0; i < len(field); i++ {
		if field[i] != '"' {
			continue
		}
		next := field[i+1:]
		switch {
		case len(next) == 0, next[0] == '\n', string(next) == "\r", bytes.HasPrefix(next, []byte("\r\n")):
			return false
		case next[0] == '"':
			i++
		default:
			if r, _ := utf8.DecodeRune(next); r == comma {
				return false
			}
		}
	}
	return true
}

// readError maps tokenizer failures to parse errors and I/O failures to
// unexpected ones.
func (s *CSVSource) readError(err error) error {
	var perr *csv.ParseError
	if stderrors.As(err, &perr) {
		return errors.Wrap(err, errors.ErrorTypeParse, "failed to tokenize input").WithDetail("path", s.config.Input)
	}
	return errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to read input").WithDetail("path", s.config.Input)
}

// Close closes the input file
func (s *CSVSource) Close(ctx context.Context) error {
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
