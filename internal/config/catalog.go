package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

// catalogFile overrides template ids per archetype label:
//
//	templates:
//	  roter Krieger: 1ZwdenAmhFfritqRwhXx6thtzB6v5Vn3M
type catalogFile struct {
	Templates map[string]string `yaml:"templates"`
}

// LoadCatalog returns the built-in catalog, with template ids from path
// applied when path is set.
func LoadCatalog(path string) (domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read archetypes file: %w", err)
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (domain.Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.Catalog{}, domain.WrapError(domain.ErrInvalidInput, "archetypes file", err)
	}
	overrides := make(map[domain.Archetype]string, len(file.Templates))
	for label, templateID := range file.Templates {
		overrides[domain.Archetype(strings.TrimSpace(label))] = templateID
	}
	return domain.NewCatalog(overrides)
}
