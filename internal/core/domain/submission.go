package domain

import (
	"fmt"
	"strings"
)

const (
	QuestionCount         = 16
	QuestionsPerArchetype = 4
	MinAnswer             = 1
	MaxAnswer             = 5

	DefaultSubmitterName = "Unbekannt"
)

// Answers holds the survey answers in question order (question 1 at index 0).
type Answers [QuestionCount]int

func AnswersFromSlice(values []int) (Answers, error) {
	var a Answers
	if len(values) != QuestionCount {
		return a, WrapError(ErrInvalidInput, "answers", fmt.Errorf("expected %d answers, got %d", QuestionCount, len(values)))
	}
	copy(a[:], values)
	return a, nil
}

// Validate reports the first answer outside the allowed range.
func (a Answers) Validate() error {
	for idx, v := range a {
		if v < MinAnswer || v > MaxAnswer {
			return WrapError(ErrInvalidInput, "answers", fmt.Errorf("question %d: value %d outside [%d,%d]", idx+1, v, MinAnswer, MaxAnswer))
		}
	}
	return nil
}

// Questions are the survey statements in order.
var Questions = [QuestionCount]string{
	"Ich fühle mich kraftvoll, wenn ich Herausforderungen aktiv anpacke",
	"Ich setze mich mutig für meine Ziele ein, auch wenn Hindernisse auftreten.",
	"Ich stehe gerne für andere ein und übernehme Verantwortung.",
	"Es fällt mir leicht, Entscheidungen zu treffen und zu handeln",
	"Ich habe viele kreative Ideen, die ich in die Welt bringen möchte.",
	"Ich erfinde gern neue Lösungen und denke in Visionen der Zukunft.",
	"Ich bin begeistert, wenn ich etwas Schönes oder Originelles erschaffen kann.",
	"Ich bringe Leichtigkeit und Freude in meine Projekte.",
	"Mir ist wichtig, dass es meinen Mitmenschen gut geht, und ich helfe gern.",
	"Ich suche Harmonie und Balance in Beziehungen und Umfeldern.",
	"Ich kann mich leicht in andere hineinversetzen und ihre Bedürfnisse erkennen.",
	"Ich ziehe Kraft aus Natur, Ruhe und regenerativen Tätigkeiten.",
	"Ich reflektiere gern über komplexe Fragen und suche nach tieferem Sin",
	"Ich beobachte Situationen analytisch und erkenne Muster.",
	"Ich vermittle gern Wissen und bringe Klarheit in schwierige Zusammenhänge.",
	"Ich bleibe ruhig und besonnen, wenn andere emotional reagieren.",
}

// QuestionField is the column name under which question idx (zero-based)
// is stored in the survey table.
func QuestionField(idx int) string {
	return fmt.Sprintf("Frage %d: %s", idx+1, Questions[idx])
}

type Submission struct {
	ID        string
	Name      string
	Email     string
	Answers   Answers
	Processed bool
	Archetype Archetype
}

// Pending reports whether the submission still awaits processing.
func (s Submission) Pending() bool {
	return !s.Processed && strings.TrimSpace(string(s.Archetype)) == ""
}

func (s Submission) DisplayName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return DefaultSubmitterName
}

type StoredFile struct {
	ID          string
	WebViewLink string
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Mail struct {
	To          string
	Bcc         string
	Subject     string
	Body        string
	Attachments []Attachment
}
