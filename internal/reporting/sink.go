package reporting

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spboyer/acceptbench/internal/models"
)

//go:generate go tool mockgen -source=sink.go -destination=sink_mock_test.go -package=reporting

// Sink stores named report artifacts.
type Sink interface {
	Put(name string, data []byte) error
}

// DirSink writes artifacts as files under Dir, creating it on first use.
type DirSink struct {
	Dir string
}

// Put writes data to Dir/name.
func (s DirSink) Put(name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}

// Format is an output format for evaluation reports.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatJUnit    Format = "junit"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// AllFormats lists every supported format.
var AllFormats = []Format{FormatText, FormatJSON, FormatJUnit, FormatMarkdown, FormatHTML}

// ParseFormats parses format names, accepting comma-separated entries.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			f, err := parseFormat(part)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

func parseFormat(s string) (Format, error) {
	switch s {
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "junit", "xml":
		return FormatJUnit, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, json, junit, markdown or html)", s)
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatJUnit:
		return ".xml"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// Render produces the report in the given format.
func Render(r *models.EvaluationReport, f Format, at time.Time) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatText:
		buf.WriteString(FormatSummaryReport(r))
		buf.WriteString("\n")
		WriteVerdictTable(&buf, r, false)
	case FormatJSON:
		if err := EncodeJSON(&buf, r); err != nil {
			return nil, err
		}
	case FormatJUnit:
		if err := EncodeJUnit(&buf, []*models.EvaluationReport{r}, at); err != nil {
			return nil, err
		}
	case FormatMarkdown:
		buf.WriteString(RenderMarkdown(r))
	case FormatHTML:
		return RenderHTML(r)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
	return buf.Bytes(), nil
}

// Emit renders the report in every format and stores each artifact in sink as
// <name><ext>. It returns the artifact names in format order.
func Emit(sink Sink, r *models.EvaluationReport, formats []Format, at time.Time) ([]string, error) {
	stem := fileStem(r)
	var names []string
	for _, f := range formats {
		data, err := Render(r, f, at)
		if err != nil {
			return names, err
		}
		name := stem + f.Extension()
		if err := sink.Put(name, data); err != nil {
			return names, fmt.Errorf("writing %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// BatchJUnitName and BatchArchiveName are the combined artifacts of a batch run.
const (
	BatchJUnitName   = "acceptbench-junit.xml"
	BatchArchiveName = "acceptbench-reports.json.gz"
)

// EmitBatch stores the combined JUnit file for all reports and, when archive
// is set, the gzip JSON archive.
func EmitBatch(sink Sink, reports []*models.EvaluationReport, archive bool, at time.Time) error {
	var junit bytes.Buffer
	if err := EncodeJUnit(&junit, reports, at); err != nil {
		return err
	}
	if err := sink.Put(BatchJUnitName, junit.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", BatchJUnitName, err)
	}

	if !archive {
		return nil
	}
	var gz bytes.Buffer
	if err := WriteArchive(&gz, reports); err != nil {
		return err
	}
	if err := sink.Put(BatchArchiveName, gz.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", BatchArchiveName, err)
	}
	return nil
}
