package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

// minimalPDF renders a one-page document with a valid cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for idx, obj := range objects {
		offsets[idx] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", idx+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestInspectAcceptsOnePagePDF(t *testing.T) {
	if err := New().Inspect(minimalPDF()); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	for name, content := range map[string][]byte{
		"empty":     nil,
		"html":      []byte("<html>quota exceeded</html>"),
		"truncated": minimalPDF()[:40],
	} {
		t.Run(name, func(t *testing.T) {
			if err := New().Inspect(content); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestInspectEnforcesMinPages(t *testing.T) {
	if err := (&Inspector{MinPages: 1}).Inspect(minimalPDF()); err != nil {
		t.Fatalf("one page must satisfy MinPages=1, got %v", err)
	}
	err := (&Inspector{MinPages: 2}).Inspect(minimalPDF())
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "document has 1 pages, want at least 2") {
		t.Fatalf("expected page count rejection, got %v", err)
	}
}
