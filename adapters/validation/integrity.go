package validation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"datacheck/domain/check"
	"datacheck/domain/core"
	"datacheck/domain/dataset"
)

// IsSingleValue counts the distinct non-null values of every column
type IsSingleValue struct {
	base[map[string]int]
}

// NewIsSingleValue creates the check
func NewIsSingleValue() *IsSingleValue {
	return &IsSingleValue{base: newBase[map[string]int](
		"IsSingleValue",
		"Single Value in Column",
		"Check if there are columns which have only a single unique value in all rows.",
	)}
}

// AddConditionNotSingleValue fails when any column holds exactly one value
func (c *IsSingleValue) AddConditionNotSingleValue() *IsSingleValue {
	c.addCondition("Does not contain only a single value", nil, func(counts map[string]int) (bool, string) {
		var single []string
		for col, n := range counts {
			if n == 1 {
				single = append(single, col)
			}
		}
		if len(single) == 0 {
			return true, ""
		}
		sort.Strings(single)
		return false, fmt.Sprintf("Columns containing a single constant value: ['%s']", strings.Join(single, "', '"))
	})
	return c
}

// Run computes the unique counts
func (c *IsSingleValue) Run(_ context.Context, ds *dataset.Dataset) (*check.Result, error) {
	counts := make(map[string]int, ds.Frame.NumColumns())
	for _, col := range ds.Frame.Columns {
		counts[col] = dataset.Unique(ds.Frame.Column(col))
	}
	return c.finish(counts), nil
}

// PercentOfNulls computes the share of missing cells in every column
type PercentOfNulls struct {
	base[map[string]float64]
}

// NewPercentOfNulls creates the check
func NewPercentOfNulls() *PercentOfNulls {
	return &PercentOfNulls{base: newBase[map[string]float64](
		"PercentOfNulls",
		"Percent Of Nulls",
		"Percent of <b>missing</b> values in each column.",
	)}
}

// AddConditionPercentOfNullsNotGreaterThan fails columns whose null ratio
// exceeds threshold
func (c *PercentOfNulls) AddConditionPercentOfNullsNotGreaterThan(threshold float64) *PercentOfNulls {
	name := fmt.Sprintf("Percent of null values in each column is not greater than %s", formatPercent(threshold))
	params := map[string]interface{}{"threshold": threshold}
	c.addCondition(name, params, func(ratios map[string]float64) (bool, string) {
		failing := map[string]string{}
		for col, ratio := range ratios {
			if ratio > threshold {
				failing[col] = formatPercent(ratio)
			}
		}
		if len(failing) == 0 {
			return true, fmt.Sprintf("Passed for %d relevant columns", len(ratios))
		}
		return false, fmt.Sprintf("Found %d columns with ratio of nulls above threshold: %s", len(failing), formatScores(failing))
	})
	return c
}

// Run computes the null ratios
func (c *PercentOfNulls) Run(_ context.Context, ds *dataset.Dataset) (*check.Result, error) {
	ratios := make(map[string]float64, ds.Frame.NumColumns())
	rows := ds.Len()
	for _, col := range ds.Frame.Columns {
		if rows == 0 {
			ratios[col] = 0
			continue
		}
		values := ds.Frame.Column(col)
		ratios[col] = float64(rows-len(dataset.NonNull(values))) / float64(rows)
	}
	return c.finish(ratios), nil
}

// TypeRatios is the share of numeric and string cells among a column's
// non-null values
type TypeRatios struct {
	Strings float64 `json:"strings"`
	Numbers float64 `json:"numbers"`
}

// Rare returns the smaller of the two shares
func (r TypeRatios) Rare() float64 {
	if r.Strings < r.Numbers {
		return r.Strings
	}
	return r.Numbers
}

// DefaultRareTypeRatioRange is the band of rare-type shares that signals a
// likely data entry problem
var DefaultRareTypeRatioRange = [2]float64{0.01, 0.1}

// MixedDataTypes finds columns holding both numbers and strings
type MixedDataTypes struct {
	base[map[string]TypeRatios]
}

// NewMixedDataTypes creates the check
func NewMixedDataTypes() *MixedDataTypes {
	return &MixedDataTypes{base: newBase[map[string]TypeRatios](
		"MixedDataTypes",
		"Mixed Data Types",
		"Detect columns which contain a mix of numerical and string values.",
	)}
}

// AddConditionRareTypeRatioNotInRange fails columns whose rare type share lies
// strictly between low and high
func (c *MixedDataTypes) AddConditionRareTypeRatioNotInRange(low, high float64) *MixedDataTypes {
	name := fmt.Sprintf("Rare data types in column are either more than %s or less than %s of the data",
		formatPercent(high), formatPercent(low))
	params := map[string]interface{}{"ratio_range": []float64{low, high}}
	c.addCondition(name, params, func(mixed map[string]TypeRatios) (bool, string) {
		failing := map[string]string{}
		for col, ratios := range mixed {
			if rare := ratios.Rare(); rare > low && rare < high {
				failing[col] = formatPercent(rare)
			}
		}
		if len(failing) == 0 {
			return true, fmt.Sprintf("%d columns have mixed data types", len(mixed))
		}
		return false, fmt.Sprintf("Found %d columns with non-negligible quantities of samples with a different data type from the majority of samples: %s",
			len(failing), formatScores(failing))
	})
	return c
}

// Run measures the type mix of every column
func (c *MixedDataTypes) Run(_ context.Context, ds *dataset.Dataset) (*check.Result, error) {
	mixed := map[string]TypeRatios{}
	for _, col := range ds.Frame.Columns {
		values := dataset.NonNull(ds.Frame.Column(col))
		if len(values) == 0 {
			continue
		}
		numbers := len(dataset.Numbers(values))
		if numbers == 0 || numbers == len(values) {
			continue
		}
		total := float64(len(values))
		mixed[col] = TypeRatios{
			Strings: float64(len(values)-numbers) / total,
			Numbers: float64(numbers) / total,
		}
	}
	return c.finish(mixed), nil
}

// ClassImbalance reports the share of every label class
type ClassImbalance struct {
	base[map[string]float64]
}

// NewClassImbalance creates the check
func NewClassImbalance() *ClassImbalance {
	return &ClassImbalance{base: newBase[map[string]float64](
		"ClassImbalance",
		"Class Imbalance",
		"Check if a dataset is imbalanced by looking at the label distribution.",
	)}
}

// AddConditionClassRatioLessThan fails when the least frequent class is less
// than threshold times as frequent as the most frequent one
func (c *ClassImbalance) AddConditionClassRatioLessThan(threshold float64) *ClassImbalance {
	name := "The ratio between least frequent label to most frequent label is above or equal " +
		strconv.FormatFloat(threshold, 'f', -1, 64)
	params := map[string]interface{}{"class_imbalance_ratio_th": threshold}
	c.addCondition(name, params, func(shares map[string]float64) (bool, string) {
		ratio := minMaxRatio(shares)
		info := "The ratio between least to most frequent label is " + formatNumber(ratio)
		return ratio >= threshold, info
	})
	return c
}

// Run computes the label class shares
func (c *ClassImbalance) Run(_ context.Context, ds *dataset.Dataset) (*check.Result, error) {
	if !ds.HasLabel() {
		return nil, core.ErrLabelRequired
	}
	labels := dataset.NonNull(ds.LabelValues())
	if len(labels) == 0 {
		return nil, core.NewInsufficientSamplesError("label", 0, 1)
	}
	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	shares := make(map[string]float64, len(counts))
	for class, n := range counts {
		shares[class] = float64(n) / float64(len(labels))
	}
	return c.finish(shares), nil
}

func minMaxRatio(shares map[string]float64) float64 {
	if len(shares) == 0 {
		return 0
	}
	lo, hi := 1.0, 0.0
	for _, s := range shares {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if hi == 0 {
		return 0
	}
	return lo / hi
}
