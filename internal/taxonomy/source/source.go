// Package source loads taxonomy records from the formats the taxonomy is published in.
//
// Two formats are supported:
// - the vendor CSV export (9 explanation rows, one header row, data in columns 1-7)
// - the processed JSON document produced by `esgmatch ingest`
//
// The loader only produces records; validation happens in taxonomy.Load.
package source

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/textutil"
)

// CSVPreambleRows is the number of rows before the first data row
// (9 explanation rows and the column header row).
const CSVPreambleRows = 10

// minCSVColumns is the number of cells a data row needs (column 0 is always empty)
const minCSVColumns = 8

// DocumentVersion is written into every document produced by Merge
const DocumentVersion = "1.0"

// Document is the processed taxonomy file
type Document struct {
	Version     string   `json:"version"`
	Source      string   `json:"source,omitempty"`
	SourceFiles []string `json:"source_files,omitempty"`
	TotalFields int      `json:"total_fields"`
	Fields      []Entry  `json:"fields"`
}

// Entry is one field as stored in a Document
type Entry struct {
	taxonomy.Record
	SearchText string `json:"search_text,omitempty"`
}

// Records returns the document's fields as loader records
func (d *Document) Records() []taxonomy.Record {
	out := make([]taxonomy.Record, 0, len(d.Fields))
	for _, e := range d.Fields {
		out = append(out, e.Record)
	}
	return out
}

// source returns a one-line description of where the document came from
func (d *Document) source() string {
	if d.Source != "" {
		return d.Source
	}
	if len(d.SourceFiles) > 0 {
		return strings.Join(d.SourceFiles, ", ")
	}
	return "unknown"
}

// ReadCSV extracts field records from a vendor CSV export.
// Rows with fewer than 8 cells, or without a field ID or field name, are skipped.
func ReadCSV(r io.Reader, sourceName string) ([]taxonomy.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []taxonomy.Record
	row := 0
	skipped := 0
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: %w", sourceName, row+1, err)
		}
		row++
		if row <= CSVPreambleRows {
			continue
		}
		if len(cells) < minCSVColumns {
			skipped++
			continue
		}

		rec := taxonomy.Record{
			Pillar:            strings.TrimSpace(cells[1]),
			Issue:             strings.TrimSpace(cells[2]),
			SubIssue:          strings.TrimSpace(cells[3]),
			FieldID:           strings.TrimSpace(cells[4]),
			FieldName:         strings.TrimSpace(cells[5]),
			FieldType:         strings.TrimSpace(cells[6]),
			UnderlyingFieldID: strings.TrimSpace(cells[7]),
			SourceFile:        sourceName,
		}
		if rec.FieldID == "" || rec.FieldName == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	slog.Debug("parsed taxonomy csv", "source", sourceName, "fields", len(records), "skipped", skipped)
	return records, nil
}

// ReadCSVFile parses one CSV export; the source name is the file stem
func ReadCSVFile(path string) ([]taxonomy.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening taxonomy csv: %w", err)
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadCSV(f, stem)
}

// Merge parses several CSV exports in order and combines them into one document
func Merge(paths []string) (*Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one csv file is required")
	}

	doc := &Document{Version: DocumentVersion}
	for _, p := range paths {
		records, err := ReadCSVFile(p)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			doc.Fields = append(doc.Fields, Entry{Record: rec, SearchText: searchText(rec)})
		}
		doc.SourceFiles = append(doc.SourceFiles, filepath.Base(p))
	}
	doc.TotalFields = len(doc.Fields)
	return doc, nil
}

func searchText(rec taxonomy.Record) string {
	return textutil.Fold(strings.Join([]string{rec.FieldName, rec.Issue, rec.SubIssue, rec.Pillar}, " "))
}

// ReadDocument decodes a processed taxonomy document
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding taxonomy document: %w", err)
	}
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
	return &doc, nil
}

// WriteDocument encodes doc as indented JSON
func WriteDocument(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding taxonomy document: %w", err)
	}
	return nil
}

// WriteDocumentFile writes doc to path, creating parent directories
func WriteDocumentFile(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating taxonomy document: %w", err)
	}
	if err := WriteDocument(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadIndex builds an index from a .json document or a single .csv export
func LoadIndex(path string) (*taxonomy.Index, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err := ReadCSVFile(path)
		if err != nil {
			return nil, err
		}
		return taxonomy.Load(records, taxonomy.WithSource(filepath.Base(path)))
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening taxonomy: %w", err)
		}
		defer f.Close()

		doc, err := ReadDocument(f)
		if err != nil {
			return nil, err
		}
		return taxonomy.Load(doc.Records(), taxonomy.WithVersion(doc.Version), taxonomy.WithSource(doc.source()))
	}
}
