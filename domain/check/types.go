package check

// Name identifies one of the built-in data-quality checks. The set is closed.
type Name string

const (
	IsSingleValue           Name = "Is Single Value"
	PercentOfNulls          Name = "Percent Of Nulls"
	FeatureLabelCorrelation Name = "Feature Label Correlation"
	MixedDataTypes          Name = "Mixed Data Types"
	ClassImbalance          Name = "Class Imbalance"
	FeatureDrift            Name = "Feature Drift"
	MultivariateDrift       Name = "Multivariate Drift"
	NewCategoryTrainTest    Name = "New Category Train Test"
	TrainTestSamplesMix     Name = "Train Test Samples Mix"
)

// all lists the checks in the order they are offered to the user
var all = []Name{
	IsSingleValue,
	PercentOfNulls,
	FeatureLabelCorrelation,
	MixedDataTypes,
	ClassImbalance,
	FeatureDrift,
	MultivariateDrift,
	NewCategoryTrainTest,
	TrainTestSamplesMix,
}

// All returns every check name in display order
func All() []Name {
	out := make([]Name, len(all))
	copy(out, all)
	return out
}

// Valid reports whether n belongs to the closed set
func (n Name) Valid() bool {
	for _, known := range all {
		if n == known {
			return true
		}
	}
	return false
}

// Arity returns how many datasets the check consumes: 1 for train-only
// checks, 2 for train/test comparisons, 0 for unknown names
func (n Name) Arity() int {
	switch n {
	case IsSingleValue, PercentOfNulls, FeatureLabelCorrelation, MixedDataTypes, ClassImbalance:
		return 1
	case FeatureDrift, MultivariateDrift, NewCategoryTrainTest, TrainTestSamplesMix:
		return 2
	}
	return 0
}

func (n Name) String() string {
	return string(n)
}
