// Package loader reads computed structure entries from JSON record files
package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/alexsquires/code-club/pkg/models"
)

var (
	// ErrMissingStructure is returned for an entry record without a structure
	ErrMissingStructure = errors.New("entry has no structure")
	// ErrUnsupportedDocument is returned when the top-level JSON value is not
	// an entry, a list of entries or an object with an "entries" list
	ErrUnsupportedDocument = errors.New("unsupported entries document")
)

// Load decodes entry records from r. It accepts a JSON array of entries, a
// single entry object, or an object wrapping the array under "entries".
func Load(r io.Reader) ([]models.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrUnsupportedDocument)
	}

	var entries []models.Entry
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries: %w", err)
		}
	case '{':
		var doc struct {
			Entries []models.Entry `json:"entries"`
			models.Entry
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode entries: %w", err)
		}
		switch {
		case doc.Entries != nil:
			entries = doc.Entries
		case doc.Structure != nil:
			entries = []models.Entry{doc.Entry}
		default:
			return nil, fmt.Errorf("%w: object has neither entries nor structure", ErrUnsupportedDocument)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrUnsupportedDocument, data[0])
	}

	for i, e := range entries {
		if e.Structure == nil {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMissingStructure)
		}
	}

	return entries, nil
}

// LoadFile opens path and decodes its entries. Files ending in .gz are
// decompressed first.
func LoadFile(path string) ([]models.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	entries, err := Load(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Project splits entries into parallel structure and energy slices. Energies
// include the entry corrections.
func Project(entries []models.Entry) ([]models.Structure, []float64) {
	structures := make([]models.Structure, len(entries))
	energies := make([]float64, len(entries))
	for i, e := range entries {
		if e.Structure != nil {
			structures[i] = *e.Structure
		}
		energies[i] = e.CorrectedEnergy()
	}
	return structures, energies
}
