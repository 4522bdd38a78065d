package reporting

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/spboyer/acceptbench/internal/models"
)

// EncodeJSON writes one report as indented JSON.
func EncodeJSON(w io.Writer, r *models.EvaluationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteArchive writes the reports as a gzip-compressed JSON array.
func WriteArchive(w io.Writer, reports []*models.EvaluationReport) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(zw).Encode(reports); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encoding archive: %w", err)
	}
	return zw.Close()
}

// ReadArchive reads an archive written by [WriteArchive].
func ReadArchive(r io.Reader) ([]*models.EvaluationReport, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close() //nolint:errcheck

	var reports []*models.EvaluationReport
	if err := json.NewDecoder(zr).Decode(&reports); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	return reports, nil
}
