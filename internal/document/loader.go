package document

import (
	"fmt"
	"os"
)

// Loader reads a configuration document from disk.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the file. Parse errors keep their validation kind.
func (l *Loader) Load() (Document, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read configuration document: %w", err)
	}
	return Parse(data)
}

// Save encodes doc in format f and writes it to the loader's path.
func (l *Loader) Save(doc Document, f Format) error {
	data, err := Encode(doc, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(l.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write configuration document: %w", err)
	}
	return nil
}
