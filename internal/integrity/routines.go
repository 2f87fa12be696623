package integrity

import (
	"context"

	"datacheck/adapters/validation"
	"datacheck/domain/check"
	"datacheck/domain/dataset"
	"datacheck/ports"
)

// Condition thresholds applied by the routines
const (
	MaxNullRatio           = 0.95
	MaxFeaturePPS          = 0.8
	MinClassRatio          = 0.1
	MaxCategoricalDrift    = 0.2
	MaxNumericDrift        = 0.2
	MaxMultivariateDrift   = 0.25
	MaxNewCategories       = 0
	MaxTrainTestDuplicates = 0.0
)

// routine configures one check and runs it. The train frame's last column is
// its label; the test frame carries no label.
type routine func(ctx context.Context, runner ports.CheckRunner, train, test *dataset.Frame) (*check.Result, error)

var routines = map[check.Name]routine{
	check.IsSingleValue: single(func() ports.SingleDatasetCheck {
		return validation.NewIsSingleValue().AddConditionNotSingleValue()
	}),
	check.PercentOfNulls: single(func() ports.SingleDatasetCheck {
		return validation.NewPercentOfNulls().AddConditionPercentOfNullsNotGreaterThan(MaxNullRatio)
	}),
	check.FeatureLabelCorrelation: single(func() ports.SingleDatasetCheck {
		return validation.NewFeatureLabelCorrelation().AddConditionFeaturePPSLessThan(MaxFeaturePPS)
	}),
	check.MixedDataTypes: single(func() ports.SingleDatasetCheck {
		low, high := validation.DefaultRareTypeRatioRange[0], validation.DefaultRareTypeRatioRange[1]
		return validation.NewMixedDataTypes().AddConditionRareTypeRatioNotInRange(low, high)
	}),
	check.ClassImbalance: single(func() ports.SingleDatasetCheck {
		return validation.NewClassImbalance().AddConditionClassRatioLessThan(MinClassRatio)
	}),
	check.FeatureDrift: trainTest(func() ports.TrainTestCheck {
		return validation.NewFeatureDrift().AddConditionDriftScoreLessThan(MaxCategoricalDrift, MaxNumericDrift)
	}),
	check.MultivariateDrift: trainTest(func() ports.TrainTestCheck {
		return validation.NewMultivariateDrift().AddConditionOverallDriftValueLessThan(MaxMultivariateDrift)
	}),
	check.NewCategoryTrainTest: trainTest(func() ports.TrainTestCheck {
		return validation.NewNewCategoryTrainTest().AddConditionNewCategoriesLessOrEqual(MaxNewCategories)
	}),
	check.TrainTestSamplesMix: trainTest(func() ports.TrainTestCheck {
		return validation.NewTrainTestSamplesMix().AddConditionDuplicatesRatioLessOrEqual(MaxTrainTestDuplicates)
	}),
}

func single(build func() ports.SingleDatasetCheck) routine {
	return func(ctx context.Context, runner ports.CheckRunner, train, _ *dataset.Frame) (*check.Result, error) {
		ds, err := dataset.LabelLast(train)
		if err != nil {
			return nil, err
		}
		return runner.RunSingle(ctx, build(), ds)
	}
}

func trainTest(build func() ports.TrainTestCheck) routine {
	return func(ctx context.Context, runner ports.CheckRunner, train, test *dataset.Frame) (*check.Result, error) {
		trainDS, err := dataset.LabelLast(train)
		if err != nil {
			return nil, err
		}
		return runner.RunTrainTest(ctx, build(), trainDS, dataset.Unlabeled(test))
	}
}
