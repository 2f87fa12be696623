package validation

import (
	"context"
	"fmt"
	"sort"

	"datacheck/domain/check"
	"datacheck/domain/core"
	"datacheck/domain/dataset"
)

// NewCategories describes the test categories of one feature that never
// appear in train
type NewCategories struct {
	Count      int      `json:"# New Categories"`
	Ratio      float64  `json:"Ratio of new categories"`
	Categories []string `json:"New categories"`
}

// NewCategoryTrainTest finds categorical values that only occur in test
type NewCategoryTrainTest struct {
	base[map[string]NewCategories]
}

// NewNewCategoryTrainTest creates the check
func NewNewCategoryTrainTest() *NewCategoryTrainTest {
	return &NewCategoryTrainTest{base: newBase[map[string]NewCategories](
		"NewCategoryTrainTest",
		"New Category Train Test",
		"Find new categories in the test set.",
	)}
}

// AddConditionNewCategoriesLessOrEqual fails features with more than maxNew
// unseen categories
func (c *NewCategoryTrainTest) AddConditionNewCategoriesLessOrEqual(maxNew int) *NewCategoryTrainTest {
	name := fmt.Sprintf("Number of new category values is less or equal to %d", maxNew)
	params := map[string]interface{}{"max_new": maxNew}
	c.addCondition(name, params, func(found map[string]NewCategories) (bool, string) {
		failing := map[string]string{}
		for feature, nc := range found {
			if nc.Count > maxNew {
				failing[feature] = fmt.Sprintf("%d", nc.Count)
			}
		}
		if len(failing) == 0 {
			return true, fmt.Sprintf("Passed for %d relevant columns", len(found))
		}
		return false, fmt.Sprintf("Found %d features with number of new categories above threshold: %s",
			len(failing), formatScores(failing))
	})
	return c
}

// Run compares the categories of every shared categorical feature
func (c *NewCategoryTrainTest) Run(_ context.Context, train, test *dataset.Dataset) (*check.Result, error) {
	features := train.SharedFeatures(test)
	if len(features) == 0 {
		return nil, core.ErrNoSharedFeatures
	}

	found := map[string]NewCategories{}
	for _, feature := range features {
		trainCol, testCol := train.Frame.Column(feature), test.Frame.Column(feature)
		if dataset.InferKind(trainCol) != dataset.KindCategorical {
			continue
		}

		known := map[string]struct{}{}
		for _, v := range dataset.NonNull(trainCol) {
			known[v] = struct{}{}
		}
		unseen := map[string]struct{}{}
		var unseenRows int
		testValues := dataset.NonNull(testCol)
		for _, v := range testValues {
			if _, ok := known[v]; !ok {
				unseen[v] = struct{}{}
				unseenRows++
			}
		}

		categories := make([]string, 0, len(unseen))
		for v := range unseen {
			categories = append(categories, v)
		}
		sort.Strings(categories)
		var ratio float64
		if len(testValues) > 0 {
			ratio = float64(unseenRows) / float64(len(testValues))
		}
		found[feature] = NewCategories{Count: len(categories), Ratio: ratio, Categories: categories}
	}
	return c.finish(found), nil
}

// SamplesMix is the share of test rows that also appear in train
type SamplesMix struct {
	Ratio      float64 `json:"ratio"`
	Duplicates int     `json:"duplicates"`
	TestRows   int     `json:"test_rows"`
}

// TrainTestSamplesMix detects test samples duplicated in train
type TrainTestSamplesMix struct {
	base[SamplesMix]
}

// NewTrainTestSamplesMix creates the check
func NewTrainTestSamplesMix() *TrainTestSamplesMix {
	return &TrainTestSamplesMix{base: newBase[SamplesMix](
		"TrainTestSamplesMix",
		"Train Test Samples Mix",
		"Detect samples in the test data that appear also in training data.",
	)}
}

// AddConditionDuplicatesRatioLessOrEqual fails when the duplicated share
// exceeds maxRatio
func (c *TrainTestSamplesMix) AddConditionDuplicatesRatioLessOrEqual(maxRatio float64) *TrainTestSamplesMix {
	name := fmt.Sprintf("Percentage of test data samples that appear in train data is less or equal to %s",
		formatPercent(maxRatio))
	params := map[string]interface{}{"max_ratio": maxRatio}
	c.addCondition(name, params, func(mix SamplesMix) (bool, string) {
		info := "Percent of test data samples that appear in train data: " + formatPercent(mix.Ratio)
		return mix.Ratio <= maxRatio, info
	})
	return c
}

// Run matches test rows against train rows on the shared features
func (c *TrainTestSamplesMix) Run(_ context.Context, train, test *dataset.Dataset) (*check.Result, error) {
	features := train.SharedFeatures(test)
	if len(features) == 0 {
		return nil, core.ErrNoSharedFeatures
	}

	trainCols := make([]int, len(features))
	testCols := make([]int, len(features))
	for i, feature := range features {
		trainCols[i] = train.Frame.Index(feature)
		testCols[i] = test.Frame.Index(feature)
	}

	seen := make(map[string]struct{}, train.Len())
	for i := 0; i < train.Len(); i++ {
		seen[train.Frame.RowKey(i, trainCols)] = struct{}{}
	}

	mix := SamplesMix{TestRows: test.Len()}
	for i := 0; i < test.Len(); i++ {
		if _, ok := seen[test.Frame.RowKey(i, testCols)]; ok {
			mix.Duplicates++
		}
	}
	if mix.TestRows > 0 {
		mix.Ratio = float64(mix.Duplicates) / float64(mix.TestRows)
	}
	return c.finish(mix), nil
}
