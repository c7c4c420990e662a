package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Archetype string

const (
	ArchetypeWarrior Archetype = "roter Krieger"
	ArchetypeCreator Archetype = "gelber Schöpfer"
	ArchetypeHealer  Archetype = "grüner Heiler"
	ArchetypeSage    Archetype = "blauer Weiser"
)

// Archetypes lists every archetype in canonical order. Ties that survive
// every scoring rule resolve to the earliest entry.
var Archetypes = [...]Archetype{
	ArchetypeWarrior,
	ArchetypeCreator,
	ArchetypeHealer,
	ArchetypeSage,
}

func (a Archetype) String() string { return string(a) }

func (a Archetype) Valid() bool {
	for _, known := range Archetypes {
		if a == known {
			return true
		}
	}
	return false
}

// Index returns the canonical position of a, or -1 when a is unknown.
func (a Archetype) Index() int {
	for idx, known := range Archetypes {
		if a == known {
			return idx
		}
	}
	return -1
}

// ParseArchetype validates a label coming from an external source.
func ParseArchetype(label string) (Archetype, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", WrapError(ErrInvalidArchetype, "parse archetype", errors.New("empty label"))
	}
	a := Archetype(trimmed)
	if !a.Valid() {
		return "", WrapError(ErrInvalidArchetype, "parse archetype", fmt.Errorf("unknown label %q", trimmed))
	}
	return a, nil
}

// QuestionGroup is the contiguous, zero-based answer range owned by an archetype.
type QuestionGroup struct {
	First int
	Last  int
}

func (g QuestionGroup) Indexes() []int {
	out := make([]int, 0, g.Last-g.First+1)
	for i := g.First; i <= g.Last; i++ {
		out = append(out, i)
	}
	return out
}

func GroupOf(a Archetype) QuestionGroup {
	idx := a.Index()
	if idx < 0 {
		return QuestionGroup{First: 0, Last: -1}
	}
	first := idx * QuestionsPerArchetype
	return QuestionGroup{First: first, Last: first + QuestionsPerArchetype - 1}
}

type ArchetypeSpec struct {
	Archetype  Archetype
	Group      QuestionGroup
	TemplateID string
}

// Catalog maps every archetype to its question group and document template.
type Catalog struct {
	specs [len(Archetypes)]ArchetypeSpec
}

var defaultTemplateIDs = map[Archetype]string{
	ArchetypeWarrior: "1ZwdenAmhFfritqRwhXx6thtzB6v5Vn3M",
	ArchetypeCreator: "1S3upJoKqKUelIQcAPfCGT3wLUjrggzXd",
	ArchetypeHealer:  "1d4SZfk4qsiQ9cP1JrtPuoppquulFHgXoqAZfUa93vPY",
	ArchetypeSage:    "1IhjW71NpbYdSK8S_o0lacpuVxw79Cam5AkssnJ6zpuM",
}

func DefaultCatalog() Catalog {
	catalog, _ := NewCatalog(defaultTemplateIDs)
	return catalog
}

// NewCatalog builds a catalog from template overrides. Archetypes missing
// from templates keep their built-in template id.
func NewCatalog(templates map[Archetype]string) (Catalog, error) {
	var c Catalog
	for idx, a := range Archetypes {
		c.specs[idx] = ArchetypeSpec{
			Archetype:  a,
			Group:      GroupOf(a),
			TemplateID: defaultTemplateIDs[a],
		}
	}
	for a, templateID := range templates {
		idx := a.Index()
		if idx < 0 {
			return Catalog{}, WrapError(ErrInvalidArchetype, "build catalog", fmt.Errorf("unknown label %q", a))
		}
		if strings.TrimSpace(templateID) == "" {
			return Catalog{}, WrapError(ErrInvalidInput, "build catalog", fmt.Errorf("empty template id for %q", a))
		}
		c.specs[idx].TemplateID = strings.TrimSpace(templateID)
	}
	return c, nil
}

func (c Catalog) Spec(a Archetype) (ArchetypeSpec, error) {
	idx := a.Index()
	if idx < 0 {
		return ArchetypeSpec{}, WrapError(ErrInvalidArchetype, "catalog lookup", fmt.Errorf("unknown label %q", a))
	}
	return c.specs[idx], nil
}

func (c Catalog) Specs() []ArchetypeSpec {
	out := make([]ArchetypeSpec, len(c.specs))
	copy(out, c.specs[:])
	return out
}
