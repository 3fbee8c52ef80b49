package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Stations []Station `yaml:"stations" validate:"required,min=1"`
}

// LoadFile reads a YAML station catalog from disk and validates every record.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (*Catalog, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing catalog file: %w", err)
	}

	v := validator.New()
	if err := v.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}
	for _, s := range doc.Stations {
		if err := v.Struct(s); err != nil {
			return nil, fmt.Errorf("invalid station %q: %w", s.ID, err)
		}
	}

	return NewCatalog(doc.Stations)
}
