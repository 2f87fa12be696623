package dataset

import (
	"strconv"
	"strings"
)

// Kind classifies a column for statistical treatment
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// MaxCategoricalUnique is the largest number of distinct values a numeric
// column may have and still be treated as categorical
const MaxCategoricalUnique = 10

// nullTokens are the cell values read as missing, matching the defaults of
// common CSV tooling
var nullTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsNull reports whether a cell is a missing value
func IsNull(cell string) bool {
	return nullTokens[cell]
}

// ParseNumber parses a cell as a float64
func ParseNumber(cell string) (float64, bool) {
	if IsNull(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NonNull returns the non-missing cells in order
func NonNull(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !IsNull(v) {
			out = append(out, v)
		}
	}
	return out
}

// Numbers returns the numeric cells of a column, skipping nulls and
// non-numeric values
func Numbers(values []string) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if n, ok := ParseNumber(v); ok {
			out = append(out, n)
		}
	}
	return out
}

// Unique returns the number of distinct non-null values
func Unique(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if !IsNull(v) {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// InferKind decides whether a column is numeric or categorical. A column is
// numeric when every non-null cell parses as a number and it has more than
// MaxCategoricalUnique distinct values.
func InferKind(values []string) Kind {
	nonNull := NonNull(values)
	if len(nonNull) == 0 {
		return KindCategorical
	}
	for _, v := range nonNull {
		if _, ok := ParseNumber(v); !ok {
			return KindCategorical
		}
	}
	if Unique(nonNull) <= MaxCategoricalUnique {
		return KindCategorical
	}
	return KindNumeric
}
