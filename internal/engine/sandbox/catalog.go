// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package sandbox

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/toeirei/activation-console/internal/model"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Catalog lists the activation codes the sandbox backend accepts.
type Catalog struct {
	Codes []CodeEntry `yaml:"codes" validate:"required,min=1,dive"`
}

// CodeEntry is one activation code and the entitlement behind it.
type CodeEntry struct {
	Code string `yaml:"code" validate:"required"`
	// Seats caps concurrent activations; 0 means unlimited.
	Seats int `yaml:"seats" validate:"min=0"`
	// Editions restricts the edition ID on activation. Empty accepts only the default edition.
	Editions    []string          `yaml:"editions,omitempty"`
	Entitlement model.Entitlement `yaml:"entitlement"`
	Features    []FeatureEntry    `yaml:"features" validate:"dive"`
	Attributes  []AttributeEntry  `yaml:"attributes,omitempty" validate:"dive"`
}

// FeatureEntry describes an entitled feature.
type FeatureEntry struct {
	Key  string            `yaml:"key" validate:"required"`
	Type model.FeatureType `yaml:"type" validate:"oneof=bool element_pool usage_count"`
	// Total is the pool size; absent means unlimited. Ignored for bool features.
	Total *int64 `yaml:"total,omitempty" validate:"omitempty,min=0"`
	// UsagePeriod resets usage counters. Only meaningful for usage_count.
	UsagePeriod model.Interval `yaml:"usage_period,omitempty"`
}

// AttributeEntry is a static activation attribute.
type AttributeEntry struct {
	Key   string  `yaml:"key" validate:"required"`
	Type  string  `yaml:"type"`
	Value *string `yaml:"value,omitempty"`
}

// DefaultCatalog returns the built-in demo catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file. An empty path selects the built-in one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sandbox catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse sandbox catalog: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid sandbox catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Codes))
	for _, e := range c.Codes {
		k := normalizeCode(e.Code)
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("invalid sandbox catalog: duplicate code %q", e.Code)
		}
		seen[k] = struct{}{}
	}
	return &c, nil
}

// Lookup finds a code, ignoring case and surrounding blanks.
func (c *Catalog) Lookup(code string) (*CodeEntry, bool) {
	k := normalizeCode(code)
	for i := range c.Codes {
		if normalizeCode(c.Codes[i].Code) == k {
			return &c.Codes[i], true
		}
	}
	return nil, false
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// allowsEdition reports whether editionID may be activated. The empty
// edition always selects the default.
func (e *CodeEntry) allowsEdition(editionID string) bool {
	if editionID == "" {
		return true
	}
	for _, ed := range e.Editions {
		if strings.EqualFold(ed, editionID) {
			return true
		}
	}
	return false
}

func (e *CodeEntry) feature(key string) (*FeatureEntry, bool) {
	for i := range e.Features {
		if e.Features[i].Key == key {
			return &e.Features[i], true
		}
	}
	return nil, false
}

func (e *CodeEntry) attributes() []model.ActivationAttribute {
	out := make([]model.ActivationAttribute, 0, len(e.Attributes))
	for _, a := range e.Attributes {
		out = append(out, model.ActivationAttribute{Key: a.Key, Type: a.Type, Value: a.Value})
	}
	return out
}
