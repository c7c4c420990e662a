package domain

import (
	"errors"
	"testing"
)

func TestParseArchetypeAcceptsKnownLabels(t *testing.T) {
	for _, a := range Archetypes {
		got, err := ParseArchetype("  " + string(a) + " ")
		if err != nil {
			t.Fatalf("ParseArchetype(%q) error = %v", a, err)
		}
		if got != a {
			t.Fatalf("expected %q, got %q", a, got)
		}
	}
}

func TestParseArchetypeRejectsUnknownAndEmpty(t *testing.T) {
	for _, label := range []string{"", "   ", "Roter Krieger", "violetter Magier"} {
		_, err := ParseArchetype(label)
		if !errors.Is(err, ErrInvalidArchetype) {
			t.Fatalf("ParseArchetype(%q) expected ErrInvalidArchetype, got %v", label, err)
		}
	}
}

func TestGroupsAreContiguousAndDisjoint(t *testing.T) {
	seen := make(map[int]Archetype)
	for _, a := range Archetypes {
		group := GroupOf(a)
		if group.Last-group.First+1 != QuestionsPerArchetype {
			t.Fatalf("group of %q has size %d", a, group.Last-group.First+1)
		}
		for _, idx := range group.Indexes() {
			if owner, ok := seen[idx]; ok {
				t.Fatalf("question %d owned by %q and %q", idx+1, owner, a)
			}
			seen[idx] = a
		}
	}
	if len(seen) != QuestionCount {
		t.Fatalf("expected %d questions covered, got %d", QuestionCount, len(seen))
	}
	if g := GroupOf(ArchetypeCreator); g.First != 4 || g.Last != 7 {
		t.Fatalf("unexpected creator group %+v", g)
	}
}

func TestNewCatalogOverridesTemplate(t *testing.T) {
	catalog, err := NewCatalog(map[Archetype]string{ArchetypeHealer: " tmpl-healer "})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	spec, err := catalog.Spec(ArchetypeHealer)
	if err != nil {
		t.Fatalf("Spec() error = %v", err)
	}
	if spec.TemplateID != "tmpl-healer" {
		t.Fatalf("expected override, got %q", spec.TemplateID)
	}
	warrior, _ := catalog.Spec(ArchetypeWarrior)
	if warrior.TemplateID != defaultTemplateIDs[ArchetypeWarrior] {
		t.Fatalf("expected built-in template for warrior, got %q", warrior.TemplateID)
	}
}

func TestNewCatalogRejectsUnknownArchetype(t *testing.T) {
	_, err := NewCatalog(map[Archetype]string{"violetter Magier": "x"})
	if !errors.Is(err, ErrInvalidArchetype) {
		t.Fatalf("expected ErrInvalidArchetype, got %v", err)
	}
}

func TestAnswersFromSliceRequiresSixteenValues(t *testing.T) {
	if _, err := AnswersFromSlice([]int{1, 2, 3}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	values := make([]int, QuestionCount)
	for i := range values {
		values[i] = 3
	}
	answers, err := AnswersFromSlice(values)
	if err != nil {
		t.Fatalf("AnswersFromSlice() error = %v", err)
	}
	if err := answers.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestSubmissionPending(t *testing.T) {
	cases := []struct {
		name string
		sub  Submission
		want bool
	}{
		{"fresh", Submission{}, true},
		{"processed", Submission{Processed: true}, false},
		{"labeled", Submission{Archetype: ArchetypeWarrior}, false},
		{"blank label", Submission{Archetype: "  "}, true},
	}
	for _, tc := range cases {
		if got := tc.sub.Pending(); got != tc.want {
			t.Fatalf("%s: Pending() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
