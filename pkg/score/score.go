package score

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

var (
	ErrInvalidValue = errors.New("invalid value")
	ErrMissingField = errors.New("missing field")
)

const (
	partsPath = "//Score/Part"
	titlePath = "//Score/metaTag[@name='workTitle']"
)

// Score is a parsed MuseScore document. Parts are kept as a table of part
// elements and each Part refers to its row by index.
type Score struct {
	doc   *etree.Document
	parts []*etree.Element
}

// Read parses a score document.
func Read(r io.Reader) (*Score, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	// Only escape &, < and > in text so apostrophes and quotes are kept as is
	doc.WriteSettings.CanonicalText = true
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("score: couldn't parse document: %w", err)
	}
	if doc.Root() == nil {
		return nil, errors.New("score: document has no root element")
	}
	return &Score{
		doc:   doc,
		parts: doc.FindElements(partsPath),
	}, nil
}

// Parse parses a score document from memory.
func Parse(b []byte) (*Score, error) {
	return Read(bytes.NewReader(b))
}

// Parts returns the parts of the score in document order.
func (s *Score) Parts() []*Part {
	parts := make([]*Part, len(s.parts))
	for i := range s.parts {
		parts[i] = &Part{score: s, index: i}
	}
	return parts
}

// Title returns the work title of the score or def if it is missing or empty.
func (s *Score) Title(def string) string {
	el := s.doc.FindElement(titlePath)
	if el == nil {
		return def
	}
	title := strings.TrimSpace(el.Text())
	if title == "" {
		return def
	}
	return title
}

// WriteTo serializes the score, including any mutation done through its parts.
func (s *Score) WriteTo(w io.Writer) (int64, error) {
	n, err := s.doc.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("score: couldn't write document: %w", err)
	}
	return n, nil
}

// Bytes serializes the score into memory.
func (s *Score) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
