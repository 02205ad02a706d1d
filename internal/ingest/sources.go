package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source maps a domain name to the arXiv category its papers come from and
// the Google Patents query its patents come from. A domain with neither is
// seeded without fetching anything for it.
type Source struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	PatentQuery string `yaml:"patent_query"`
}

// Sources is the ingest source map file.
type Sources struct {
	Domains []Source `yaml:"domains"`
}

// DefaultSources is used when no source file exists.
var DefaultSources = Sources{Domains: []Source{
	{Name: "AI", Category: "cs.AI", PatentQuery: "artificial intelligence OR machine learning"},
	{Name: "Robotics", Category: "cs.RO", PatentQuery: "robotics OR autonomous systems"},
	{Name: "Quantum Computing", Category: "quant-ph", PatentQuery: "quantum computing OR quantum information"},
	{Name: "Genetics", Category: "q-bio.GN", PatentQuery: "genetics OR genomics OR DNA"},
	{Name: "Cybersecurity", Category: "cs.CR", PatentQuery: "cybersecurity OR network security OR encryption"},
	{Name: "Blockchain", Category: "cs.CR", PatentQuery: "blockchain OR distributed ledger OR cryptocurrency"},
}}

// LoadSources reads a source map file. A missing file yields DefaultSources.
func LoadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSources, nil
		}
		return Sources{}, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(bytes.NewReader(data))
}

// ParseSources decodes and validates a source map.
func ParseSources(r io.Reader) (Sources, error) {
	var s Sources
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Sources{}, fmt.Errorf("decode sources: %w", err)
	}

	seen := make(map[string]struct{}, len(s.Domains))
	for i := range s.Domains {
		d := &s.Domains[i]
		d.Name = strings.TrimSpace(d.Name)
		d.Category = strings.TrimSpace(d.Category)
		d.PatentQuery = strings.TrimSpace(d.PatentQuery)
		if d.Name == "" {
			return Sources{}, fmt.Errorf("domain %d has no name", i+1)
		}
		if _, dup := seen[d.Name]; dup {
			return Sources{}, fmt.Errorf("domain %q listed twice", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return s, nil
}
