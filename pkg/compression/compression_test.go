package compression

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPath(t *testing.T) {
	tests := map[string]Algorithm{
		"data.csv":      None,
		"data.csv.gz":   Gzip,
		"DATA.JSON.GZ":  Gzip,
		"data.json.zst": Zstd,
		"data.csv.lz4":  LZ4,
		"data.csv.sz":   S2,
	}
	for path, want := range tests {
		assert.Equal(t, want, FromPath(path), path)
	}
}

func TestResolve(t *testing.T) {
	alg, err := Resolve("", "out.csv.zst")
	require.NoError(t, err)
	assert.Equal(t, Zstd, alg)

	alg, err = Resolve("GZIP", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, Gzip, alg)

	_, err = Resolve("brotli", "out.csv")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("manufacturer,color\nFord,Red\n"), 100)

	for _, alg := range []Algorithm{None, Gzip, Zstd, LZ4, S2} {
		t.Run(string(alg), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, alg)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewReader(&buf, alg)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestDeterministicOutput(t *testing.T) {
	payload := []byte("a,b\n1,2\n")
	for _, alg := range []Algorithm{Gzip, Zstd, LZ4, S2} {
		var first, second bytes.Buffer
		for _, buf := range []*bytes.Buffer{&first, &second} {
			w, err := NewWriter(buf, alg)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())
		}
		assert.Equal(t, first.Bytes(), second.Bytes(), string(alg))
	}
}
