package domain

import "time"

type ClassificationSource string

const (
	SourceLLM      ClassificationSource = "llm"
	SourceFallback ClassificationSource = "fallback"
	SourceRules    ClassificationSource = "rules"
)

// AssignedEvent is published once a submission has been delivered and marked.
type AssignedEvent struct {
	EventID     string               `json:"event_id"`
	RecordID    string               `json:"record_id"`
	Name        string               `json:"name"`
	Archetype   Archetype            `json:"archetype"`
	Source      ClassificationSource `json:"source"`
	Link        string               `json:"link,omitempty"`
	ProcessedAt time.Time            `json:"processed_at"`
}
