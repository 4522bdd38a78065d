// Package wizard creates blank acceptance grid templates for the bench.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/acceptbench/internal/dataset"
	"github.com/spboyer/acceptbench/internal/models"
	"golang.org/x/term"
)

var serialPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// GridSpec holds the fields collected by the wizard.
type GridSpec struct {
	Unit   models.Unit
	Serial string
	// Output is the CSV file to create. Empty means <Serial>.csv.
	Output string
}

// Path returns the file the template is written to.
func (s GridSpec) Path() string {
	if s.Output != "" {
		return s.Output
	}
	return s.Serial + ".csv"
}

// ValidateSerial checks that a serial number is usable as a file stem.
func ValidateSerial(s string) error {
	if s == "" {
		return errors.New("serial number is required")
	}
	if !serialPattern.MatchString(s) {
		return fmt.Errorf("serial number %q may only contain letters, digits, '.', '_' and '-'", s)
	}
	return nil
}

// RunGridWizard runs an interactive huh form to collect the unit family, serial
// number and output path. initialSerial pre-populates the serial field.
func RunGridWizard(in io.Reader, out io.Writer, initialSerial string) (*GridSpec, error) {
	var (
		serial = initialSerial
		unit   = string(models.UnitAVR)
		output string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Unit family").
				Options(
					huh.NewOption("AVR (automatic voltage regulator)", string(models.UnitAVR)),
					huh.NewOption("SMR (switch-mode rectifier)", string(models.UnitSMR)),
				).
				Value(&unit),
			huh.NewInput().
				Title("Serial number").
				Description("Identifies the unit under test; also the default file name").
				Placeholder("AVR-2291").
				Value(&serial).
				Validate(func(s string) error {
					return ValidateSerial(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Output file").
				Description("Leave empty to write <serial>.csv").
				Value(&output),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	u, err := models.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	return &GridSpec{
		Unit:   u,
		Serial: strings.TrimSpace(serial),
		Output: strings.TrimSpace(output),
	}, nil
}

// Columns returns the bench column order for a unit family.
func Columns(unit models.Unit) ([]string, error) {
	switch unit {
	case models.UnitAVR:
		return models.AVRGridColumns, nil
	case models.UnitSMR:
		return models.SMRGridColumns, nil
	}
	return nil, fmt.Errorf("unknown unit %q", unit)
}

// templateNotes are written above the header as comment lines.
var templateNotes = map[models.Unit][]string{
	models.UnitAVR: {
		"Load and Line are regulation in %; enter -- where the test does not apply.",
	},
	models.UnitSMR: {
		"PF (in) is signed as the meter shows it: positive is leading and negative is lagging.",
		"Enter a lagging power factor of 0.96 as -0.96.",
	},
}

// WriteTemplate writes the unit's notes, a header row and six empty
// measurement rows.
func WriteTemplate(w io.Writer, unit models.Unit) error {
	headers, err := Columns(unit)
	if err != nil {
		return err
	}
	notes := append([]string{fmt.Sprintf("Fill in %d measurement rows in test order.", models.RowCount)}, templateNotes[unit]...)
	for _, n := range notes {
		if _, err := fmt.Fprintf(w, "%c %s\n", dataset.CommentPrefix, n); err != nil {
			return err
		}
	}
	rows := make([]dataset.Row, models.RowCount)
	for i := range rows {
		rows[i] = dataset.Row{}
	}
	return dataset.WriteCSV(w, headers, rows)
}

// CreateTemplate writes the template for spec to disk and returns its path. An
// existing file is never overwritten.
func CreateTemplate(spec *GridSpec) (string, error) {
	path := spec.Path()
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if err := WriteTemplate(f, spec.Unit); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, f.Close()
}
