package airtable

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

func toSubmission(rec record) domain.Submission {
	sub := domain.Submission{
		ID:        rec.ID,
		Name:      stringField(rec.Fields, fieldName),
		Email:     strings.TrimSpace(stringField(rec.Fields, fieldEmail)),
		Processed: boolField(rec.Fields, fieldSent),
		Archetype: domain.Archetype(strings.TrimSpace(stringField(rec.Fields, fieldLabel))),
	}
	for idx := range sub.Answers {
		sub.Answers[idx] = answerField(rec.Fields, domain.QuestionField(idx))
	}
	return sub
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func boolField(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// answerField accepts JSON numbers and numeric strings. Anything else,
// including fractional values, yields 0 so scoring rejects the record.
func answerField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		n = parsed
	}
	if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}
