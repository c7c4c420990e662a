package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

const classificationResultKey = "Tag_Label"

const classificationSystemInstruction = `{"Tag_Label": "dominanter Archetyp"}`

func buildClassificationPrompt(name string, answers domain.Answers) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Du bist ein einfühlsamer Coach und Erklärer. Deine Aufgabe ist es, den dominanten Archetyp einer Person anhand ihrer Antworten auf 16 Fragen zu identifizieren [Name:%s]\n\n", name)
	b.WriteString("Werte die 16 Antworten (Skala 1–5) aus:\n")

	for _, a := range domain.Archetypes {
		group := domain.GroupOf(a)
		fmt.Fprintf(&b, "\nFragen %d–%d → %s\n", group.First+1, group.Last+1, a)
		for _, idx := range group.Indexes() {
			fmt.Fprintf(&b, "Frage %d: %s: %d\n", idx+1, domain.Questions[idx], answers[idx])
		}
	}

	b.WriteString(`
Regeln:
1. Addiere die Werte pro Archetyp (min. 4, max. 20)
2. Der Archetyp mit der höchsten Punktzahl gewinnt
3. Bei Gleichstand: Der mit den meisten "5"-Bewertungen

`)
	labels := make([]string, 0, len(domain.Archetypes))
	for _, a := range domain.Archetypes {
		labels = append(labels, fmt.Sprintf("%q", string(a)))
	}
	fmt.Fprintf(&b, "Output: Nur JSON mit %s (exakt: %s)\n", classificationResultKey, strings.Join(labels, ", "))
	return b.String()
}

func parseClassificationResult(raw string) (domain.Archetype, error) {
	var result map[string]any
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return "", domain.WrapError(domain.ErrInvalidArchetype, "parse classification json", err)
	}
	value, ok := result[classificationResultKey]
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidArchetype, "parse classification json", fmt.Errorf("missing key %s", classificationResultKey))
	}
	label, ok := value.(string)
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidArchetype, "parse classification json", fmt.Errorf("key %s is %T, not string", classificationResultKey, value))
	}
	return domain.ParseArchetype(label)
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
