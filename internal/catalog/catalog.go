// Package catalog reads the static activity catalog the registry is seeded
// from. Documents are validated against an embedded JSON schema before use.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/validation"
	"mergington-activities/internal/registry"
)

//go:embed schema.json
var schemaJSON []byte

//go:embed default_catalog.json
var defaultCatalogJSON []byte

var (
	compiled     *validation.Schema
	compiledErr  error
	compiledOnce sync.Once
)

func schema() (*validation.Schema, error) {
	compiledOnce.Do(func() {
		compiled, compiledErr = validation.Compile(schemaJSON)
	})
	return compiled, compiledErr
}

// Document is the on-disk catalog format. Activities is a list so seed
// order is explicit.
type Document struct {
	Version    string     `json:"version,omitempty"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Parse validates raw against the catalog schema and decodes it.
func Parse(raw []byte) (*Document, error) {
	s, err := schema()
	if err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	result, err := s.ValidateJSON(raw)
	if err != nil {
		return nil, apperrors.NewCatalogInvalidError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewCatalogInvalidError(result.Error())
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.NewCatalogInvalidError(err.Error())
	}

	seen := make(map[string]struct{}, len(doc.Activities))
	for _, a := range doc.Activities {
		if _, dup := seen[a.Name]; dup {
			return nil, apperrors.NewCatalogInvalidError(fmt.Sprintf("duplicate activity %q", a.Name))
		}
		seen[a.Name] = struct{}{}
	}
	return &doc, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Document, error) {
	return Parse(defaultCatalogJSON)
}

// Entries converts the document into registry seed entries.
func (d *Document) Entries() []registry.Entry {
	out := make([]registry.Entry, 0, len(d.Activities))
	for _, a := range d.Activities {
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		out = append(out, registry.Entry{
			Name: a.Name,
			Activity: registry.Activity{
				Description:     a.Description,
				Schedule:        a.Schedule,
				MaxParticipants: a.MaxParticipants,
				Participants:    participants,
			},
		})
	}
	return out
}

// Add appends an activity, rejecting duplicate names.
func (d *Document) Add(a Activity) error {
	for _, existing := range d.Activities {
		if existing.Name == a.Name {
			return fmt.Errorf("activity %q already exists", a.Name)
		}
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}
	d.Activities = append(d.Activities, a)
	return nil
}

// Encode renders the document as indented JSON. Missing participant lists
// are written as [] so the output always passes the schema.
func (d *Document) Encode() ([]byte, error) {
	for i := range d.Activities {
		if d.Activities[i].Participants == nil {
			d.Activities[i].Participants = []string{}
		}
	}
	return json.MarshalIndent(d, "", "  ")
}
