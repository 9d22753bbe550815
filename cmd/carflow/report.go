package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/carflow/internal/pipeline"
	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/logger"
)

// report prints the one-line outcome of a pipeline to stdout
func (a *app) report(line string, err error) {
	fmt.Fprintln(a.stdout, line)
	if err != nil {
		a.failed = true
		logger.Get().Debug("pipeline error reported", zap.String("line", line), zap.Error(err))
	}
}

// convertMessage renders the outcome of a conversion
func convertMessage(cfg *config.Config, result *pipeline.Result, err error) string {
	input := cfg.Converter.Input
	if err != nil {
		switch errors.TypeOf(err) {
		case errors.ErrorTypeFileNotFound:
			return fmt.Sprintf("Error: File '%s' not found.", pathOf(err, input))
		case errors.ErrorTypeInvalidFormat:
			return fmt.Sprintf("Error: Invalid JSON format in '%s'.", pathOf(err, input))
		default:
			return "An unexpected error occurred: " + reasonOf(err)
		}
	}

	line := fmt.Sprintf("Successfully converted '%s' array from %s to %s", cfg.Converter.ArrayKey, input, cfg.Converter.Output)
	if len(cfg.Converter.Exclude) > 0 {
		quoted := make([]string, len(cfg.Converter.Exclude))
		for i, name := range cfg.Converter.Exclude {
			quoted[i] = "'" + name + "'"
		}
		line += fmt.Sprintf(" (excluding %s)", strings.Join(quoted, ", "))
	}
	return line + "."
}

// visualizeMessage renders the outcome of a visualization of input
func visualizeMessage(input string, result *pipeline.Result, err error) string {
	if err != nil {
		switch errors.TypeOf(err) {
		case errors.ErrorTypeFileNotFound:
			return fmt.Sprintf("Error: File '%s' not found.", pathOf(err, input))
		case errors.ErrorTypeParse:
			return fmt.Sprintf("Error: Could not parse file '%s'. Check delimiter.", pathOf(err, input))
		default:
			return "An error occurred: " + reasonOf(err)
		}
	}

	return fmt.Sprintf("Rendered %d charts from %s (%d entries): %s",
		len(result.Outputs), input, result.Rows, strings.Join(result.Outputs, ", "))
}

func pathOf(err error, fallback string) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		if p := e.Path(); p != "" {
			return p
		}
	}
	return fallback
}

func reasonOf(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Reason()
	}
	return err.Error()
}
