// Package examples loads the catalog of example datasets from the embedded examples.yaml
package examples

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"tiba/internal/core/dataset"
	perr "tiba/internal/platform/errors"
)

//go:embed examples.yaml
var embedded []byte

// Example is one bundled dataset
type Example struct {
	Key  string `yaml:"key"  json:"key"  example:"example1"`
	Name string `yaml:"name" json:"name" example:"Neolamprologus multifasciatus"`
}

// Source credits the provider of the example data
type Source struct {
	Provider  string `yaml:"provider"  json:"provider"`
	Institute string `yaml:"institute" json:"institute"`
	Note      string `yaml:"note"      json:"note"`
}

// Catalog is the parsed example list
type Catalog struct {
	Source   Source    `yaml:"source"   json:"source"`
	Examples []Example `yaml:"examples" json:"examples"`

	byKey map[string]Example
}

var (
	once   sync.Once
	loaded *Catalog
	errLd  error
)

// Load parses the embedded catalog once
func Load() (*Catalog, error) {
	once.Do(func() { loaded, errLd = Parse(embedded) })
	return loaded, errLd
}

// MustLoad is Load that panics, handy at startup
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Errorf("examples: %w", err))
	}
	return c
}

// Parse decodes a catalog document and checks keys are unique and non empty
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse examples: %w", err)
	}
	c.byKey = make(map[string]Example, len(c.Examples))
	for i, e := range c.Examples {
		e.Key = strings.TrimSpace(e.Key)
		if e.Key == "" {
			return nil, fmt.Errorf("example %d has no key", i)
		}
		if _, dup := c.byKey[e.Key]; dup {
			return nil, fmt.Errorf("duplicate example key %q", e.Key)
		}
		if e.Name == "" {
			e.Name = e.Key
		}
		c.Examples[i] = e
		c.byKey[e.Key] = e
	}
	return &c, nil
}

// Lookup finds an example by key
func (c *Catalog) Lookup(key string) (Example, bool) {
	e, ok := c.byKey[key]
	return e, ok
}

// Upload resolves key into a dataset reference
func (c *Catalog) Upload(key string) (dataset.Upload, error) {
	e, ok := c.Lookup(key)
	if !ok {
		return dataset.Upload{}, perr.WithField(perr.InvalidArgf("unknown example %q", key), "example")
	}
	return dataset.Upload{Name: e.Name, Example: e.Key}, nil
}
