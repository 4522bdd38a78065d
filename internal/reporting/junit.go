package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/spboyer/acceptbench/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluated grid.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one evaluated cell.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a limit violation.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a cell whose check did not apply.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts evaluation reports to JUnit XML, one suite per grid
// and one test case per evaluated cell. NOT_EVALUATED cells are skipped and
// abnormal cells pass with a note in system-out.
func ConvertToJUnit(reports []*models.EvaluationReport, at time.Time) *JUnitTestSuites {
	suites := &JUnitTestSuites{}
	for _, r := range reports {
		suite := convertReport(r, at)
		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Skipped += suite.Skipped
		suites.TestSuites = append(suites.TestSuites, suite)
	}
	return suites
}

func convertReport(r *models.EvaluationReport, at time.Time) JUnitTestSuite {
	suite := JUnitTestSuite{
		Name:      ReportName(r),
		Timestamp: at.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "unit", Value: string(r.Unit)},
			{Name: "result", Value: string(r.Result)},
		},
	}
	if r.Module != nil {
		suite.Properties = append(suite.Properties,
			JUnitProperty{Name: "module", Value: string(r.Module.Type)},
			JUnitProperty{Name: "rated_current_a", Value: formatNumber(r.Module.RatedCurrentA)})
	}
	if r.Rated != nil {
		suite.Properties = append(suite.Properties,
			JUnitProperty{Name: "rated_power_w", Value: formatNumber(r.Rated.RatedPowerW)},
			JUnitProperty{Name: "rated_load_current_a", Value: formatNumber(r.Rated.RatedLoadCurrentA)},
			JUnitProperty{Name: "rated_input_current_a", Value: formatNumber(r.Rated.RatedInputCurrentA)})
	}

	for _, v := range r.Verdicts {
		tc := JUnitTestCase{
			Name:      fmt.Sprintf("%s row %d", v.Column, v.ExcelRow),
			Classname: fmt.Sprintf("%s.%s", r.Unit, v.Check),
		}
		switch v.Status {
		case models.StatusInvalid:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("measured %s, limit %s", formatNumber(v.Measured), v.Limit),
				Type:    "LimitViolation",
			}
			suite.Failures++
		case models.StatusNotEvaluated:
			tc.Skipped = &JUnitSkipped{Message: "not applicable: " + v.Limit}
			suite.Skipped++
		}
		if v.Abnormal {
			tc.SystemOut = fmt.Sprintf("abnormal: measured %s", formatNumber(v.Measured))
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	suite.Tests = len(suite.TestCases)
	return suite
}

// EncodeJUnit writes JUnit XML for the reports to w.
func EncodeJUnit(w io.Writer, reports []*models.EvaluationReport, at time.Time) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(reports, at), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
