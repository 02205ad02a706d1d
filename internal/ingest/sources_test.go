package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSources(t *testing.T) {
	t.Parallel()

	s, err := ParseSources(strings.NewReader(`
domains:
  - name: " AI "
    category: cs.AI
    patent_query: " machine learning "
  - name: Space
`))
	require.NoError(t, err)
	assert.Equal(t, []Source{
		{Name: "AI", Category: "cs.AI", PatentQuery: "machine learning"},
		{Name: "Space"},
	}, s.Domains)
}

func TestParseSources_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing name":  "domains:\n  - category: cs.AI\n",
		"duplicate":     "domains:\n  - name: AI\n  - name: AI\n",
		"unknown field": "domains:\n  - name: AI\n    cat: cs.AI\n",
		"not yaml":      "domains: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSources(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	s, err := LoadSources(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSources, s)

	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domains:\n  - name: Genetics\n    category: q-bio.GN\n"), 0o600))
	s, err = LoadSources(path)
	require.NoError(t, err)
	assert.Equal(t, []Source{{Name: "Genetics", Category: "q-bio.GN"}}, s.Domains)
}
