package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	catalogFixture = filepath.Join("..", "bench", "testdata", "filters.cue")
	dataFixture    = filepath.Join("..", "bench", "testdata", "fixture.yaml")
)

// decodeResponse parses the single JSON envelope written to buf.
func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), buf.String())
	return resp
}

// writeCatalog writes src as a CUE file in a temp dir and returns its path.
func writeCatalog(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filters.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}
