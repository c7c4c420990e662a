package pdfcheck

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

// Inspector verifies that exported bytes parse as a PDF with at least one page.
type Inspector struct {
	MinPages int
}

func New() *Inspector {
	return &Inspector{MinPages: 1}
}

func (i *Inspector) Inspect(content []byte) (err error) {
	if len(content) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "pdf.inspect", fmt.Errorf("empty document"))
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = domain.WrapError(domain.ErrInvalidInput, "pdf.inspect", fmt.Errorf("malformed pdf: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "pdf.inspect", err)
	}
	minPages := i.MinPages
	if minPages < 1 {
		minPages = 1
	}
	if pages := reader.NumPage(); pages < minPages {
		return domain.WrapError(domain.ErrInvalidInput, "pdf.inspect", fmt.Errorf("document has %d pages, want at least %d", pages, minPages))
	}
	return nil
}
