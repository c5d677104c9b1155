// Package jobs serves the placeholder job-postings catalog shown on the
// front page. The data is static, embedded at build time, and read-only;
// real postings come from the backend once publishing is wired up.
package jobs

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var rawCatalog []byte

// Job is one listed posting.
type Job struct {
	ID          int    `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"jobTitle"`
	Company     string `yaml:"company" json:"company"`
	Description string `yaml:"description" json:"description"`
	ImageURL    string `yaml:"image_url" json:"imageUrl,omitempty"`
}

// Catalog is the full set of placeholder postings, pre-grouped into the
// pages the front page renders.
type Catalog struct {
	pages [][]Job
}

type catalogFile struct {
	Pages [][]Job `yaml:"pages"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(rawCatalog, &file); err != nil {
		return nil, fmt.Errorf("jobs: decode catalog: %w", err)
	}
	return &Catalog{pages: file.Pages}, nil
}

// MustLoad parses the embedded catalog and panics on failure. The catalog
// ships inside the binary, so a parse failure is a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Pages returns the number of pages.
func (c *Catalog) Pages() int {
	return len(c.pages)
}

// Page returns the postings on the given zero-based page.
// Out-of-range pages return an empty slice.
func (c *Catalog) Page(n int) []Job {
	if n < 0 || n >= len(c.pages) {
		return nil
	}
	page := make([]Job, len(c.pages[n]))
	copy(page, c.pages[n])
	return page
}

// All returns every posting across all pages.
func (c *Catalog) All() []Job {
	var all []Job
	for _, page := range c.pages {
		all = append(all, page...)
	}
	return all
}
