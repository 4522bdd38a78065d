package dataset

import (
	"strings"

	"github.com/spboyer/acceptbench/internal/models"
)

// columnAliases maps lower-cased header spellings used by the bench UI and
// the submission sheets onto canonical column labels.
var columnAliases = map[string]string{
	"v (out) dc":   models.ColVOut,
	"i (out) dc":   models.ColIOut,
	"pf":           models.ColPFIn,
	"ripple":       models.ColRippleOut,
	"vthd (in)":    models.ColVthdIn,
	"ithd (in)":    models.ColIthdIn,
	"efficiency %": models.ColEfficiency,
}

var canonicalColumns = func() map[string]string {
	m := map[string]string{}
	for _, cols := range [][]string{models.AVRGridColumns, models.SMRGridColumns} {
		for _, c := range cols {
			m[strings.ToLower(c)] = c
		}
	}
	return m
}()

// CanonicalColumn normalizes a header cell: whitespace is collapsed, known
// labels are matched case-insensitively and aliases are resolved. Unknown
// headers are returned trimmed and otherwise unchanged.
func CanonicalColumn(h string) string {
	h = strings.Join(strings.Fields(h), " ")
	key := strings.ToLower(h)
	if c, ok := canonicalColumns[key]; ok {
		return c
	}
	if c, ok := columnAliases[key]; ok {
		return c
	}
	return h
}
