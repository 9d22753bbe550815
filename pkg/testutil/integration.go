package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/carflow/pkg/config"
)

// IntegrationTestSuite provides a temp directory, a context and a config
// whose every path points into that directory.
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	tempDir   string
	startTime time.Time
}

// SetupTest runs before each test in the suite
func (s *IntegrationTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), time.Minute)
	s.startTime = time.Now()
	s.tempDir = s.T().TempDir()
}

// TearDownTest runs after each test in the suite
func (s *IntegrationTestSuite) TearDownTest() {
	s.cancel()
	s.T().Logf("test completed in %v", time.Since(s.startTime))
}

// Context returns the test context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// TempDir returns the temporary directory path
func (s *IntegrationTestSuite) TempDir() string {
	return s.tempDir
}

// Path returns name inside the temp directory
func (s *IntegrationTestSuite) Path(name string) string {
	return filepath.Join(s.tempDir, name)
}

// CreateTempFile creates a temporary file with content
func (s *IntegrationTestSuite) CreateTempFile(name string, content []byte) string {
	path := s.Path(name)
	require.NoError(s.T(), os.WriteFile(path, content, 0o644))
	return path
}

// Config returns the default configuration rooted in the temp directory:
// data.json → data.csv → charts/*.svg.
func (s *IntegrationTestSuite) Config() *config.Config {
	cfg := config.NewConfig()
	cfg.Converter.Input = s.Path("data.json")
	cfg.Converter.Output = s.Path("data.csv")
	cfg.Visualizer.Input = s.Path("data.csv")
	cfg.Visualizer.OutputDir = s.Path("charts")
	cfg.Visualizer.Format = "svg"
	cfg.Logging.Level = "error"
	return cfg
}

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}
