package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type markCall struct {
	id        string
	archetype domain.Archetype
}

type storeFake struct {
	mu       sync.Mutex
	batches  [][]domain.Submission
	fetchErr error
	fetches  int
	markErr  error
	marks    []markCall
}

func (f *storeFake) FetchUnprocessed(context.Context) ([]domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	if len(f.batches) > 1 {
		f.batches = f.batches[1:]
	}
	return batch, nil
}

func (f *storeFake) MarkProcessed(_ context.Context, id string, archetype domain.Archetype) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marks = append(f.marks, markCall{id: id, archetype: archetype})
	return nil
}

type generatorFake struct {
	response string
	err      error
	calls    int
	system   string
	prompt   string
}

func (f *generatorFake) GenerateJSON(_ context.Context, system, prompt string) (string, error) {
	f.calls++
	f.system = system
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type uploadCall struct {
	name     string
	mimeType string
	content  []byte
}

type grantCall struct {
	fileID  string
	email   string
	message string
}

// docStoreFake keeps documents as plain text so substitutions are observable.
type docStoreFake struct {
	templates map[string]string
	docs      map[string]string
	titles    map[string]string
	nextID    int

	copyErr   error
	exportErr error
	deleteErr error
	uploadErr error
	grantErr  error

	copies  []string
	deleted []string
	uploads []uploadCall
	grants  []grantCall
}

func newDocStoreFake() *docStoreFake {
	return &docStoreFake{
		templates: map[string]string{},
		docs:      map[string]string{},
		titles:    map[string]string{},
	}
}

func (f *docStoreFake) CopyTemplate(_ context.Context, templateID, name string) (string, error) {
	if f.copyErr != nil {
		return "", f.copyErr
	}
	body, ok := f.templates[templateID]
	if !ok {
		return "", fmt.Errorf("template %s not found", templateID)
	}
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.docs[id] = body
	f.titles[id] = name
	f.copies = append(f.copies, name)
	return id, nil
}

func (f *docStoreFake) Export(_ context.Context, documentID, mimeType string) ([]byte, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	if mimeType != pdfMimeType {
		return nil, fmt.Errorf("unexpected mime type %s", mimeType)
	}
	return []byte(f.docs[documentID]), nil
}

func (f *docStoreFake) Delete(_ context.Context, documentID string) error {
	f.deleted = append(f.deleted, documentID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.docs, documentID)
	return nil
}

func (f *docStoreFake) Upload(_ context.Context, name, mimeType string, content []byte) (domain.StoredFile, error) {
	if f.uploadErr != nil {
		return domain.StoredFile{}, f.uploadErr
	}
	f.uploads = append(f.uploads, uploadCall{name: name, mimeType: mimeType, content: content})
	id := fmt.Sprintf("file-%d", len(f.uploads))
	return domain.StoredFile{ID: id, WebViewLink: "https://drive.example/" + id}, nil
}

func (f *docStoreFake) GrantRead(_ context.Context, fileID, email, message string) error {
	if f.grantErr != nil {
		return f.grantErr
	}
	f.grants = append(f.grants, grantCall{fileID: fileID, email: email, message: message})
	return nil
}

type editorFake struct {
	store *docStoreFake
	err   error
	calls int
}

func (f *editorFake) ReplaceText(_ context.Context, documentID, find, replace string, matchCase bool) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if !matchCase {
		return errors.New("expected case-sensitive replacement")
	}
	f.store.docs[documentID] = domain.ReplacePlaceholder(f.store.docs[documentID], find, replace)
	return nil
}

type mailerFake struct {
	err  error
	sent []domain.Mail
}

func (f *mailerFake) Send(_ context.Context, mail domain.Mail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, mail)
	return nil
}

type inspectorFake struct {
	err error
}

func (f *inspectorFake) Inspect([]byte) error { return f.err }

type publisherFake struct {
	err    error
	events []domain.AssignedEvent
}

func (f *publisherFake) PublishAssigned(_ context.Context, event domain.AssignedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type metricsFake struct {
	started  int
	finished []error
	sources  []domain.ClassificationSource
}

func (f *metricsFake) StartRecord() { f.started++ }

func (f *metricsFake) FinishRecord(_ time.Duration, err error) { f.finished = append(f.finished, err) }

func (f *metricsFake) ObserveClassification(source domain.ClassificationSource) {
	f.sources = append(f.sources, source)
}

func answersOf(groups ...[4]int) domain.Answers {
	var a domain.Answers
	for g, values := range groups {
		for i, v := range values {
			a[g*4+i] = v
		}
	}
	return a
}

// creatorAnswers sum highest for gelber Schöpfer.
func creatorAnswers() domain.Answers {
	return answersOf([4]int{2, 3, 2, 3}, [4]int{5, 4, 5, 4}, [4]int{3, 3, 3, 3}, [4]int{1, 2, 1, 2})
}

func templateFixture(store *docStoreFake) domain.Catalog {
	overrides := map[domain.Archetype]string{}
	for _, a := range domain.Archetypes {
		id := "tmpl-" + string(a)
		overrides[a] = id
		store.templates[id] = "Liebe [NAME], dein Archetyp ist " + string(a) + ". Viel Freude, [NAME]!"
	}
	catalog, err := domain.NewCatalog(overrides)
	if err != nil {
		panic(err)
	}
	return catalog
}
