// Package testutil provides testing utilities for carflow: loggers,
// contexts, fixture documents and a file-based integration suite.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout, cancelled
// when the test ends.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// WriteFile writes content to dir/name and returns the path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ReadFile returns the content of path
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

var (
	fixtureMakes     = []string{"Ford Shelby", "Toyota", "Ford", "Kia", "BMW"}
	fixtureCountries = []string{"USA", "Japan", "USA", "South Korea", "Germany"}
	fixtureColors    = []string{"Dark Blue", "Red", "Dark Green", "White", "Silver Metallic"}
)

// CarsDocument returns a JSON document with n car records under "cars".
// Records cycle through five manufacturers and carry a nested engine
// object and an image field.
func CarsDocument(n int) string {
	recs := make([]string, n)
	for i := 0; i < n; i++ {
		k := i % len(fixtureMakes)
		recs[i] = fmt.Sprintf(
			`{"manufacturer":%q,"model":"M%d","year":%d,"countryOfOrigin":%q,"color":%q,"engine":{"hp":%d,"electric":%t},"image":"img/%d.png"}`,
			fixtureMakes[k], i, 2000+i%25, fixtureCountries[k], fixtureColors[k], 100+i, i%2 == 0, i)
	}
	return `{"cars":[` + strings.Join(recs, ",") + `]}`
}
