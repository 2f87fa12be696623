package ports

import (
	"context"

	"datacheck/domain/check"
	"datacheck/domain/dataset"
)

// Check is a data-quality check built by the validation library, with its
// conditions already attached
type Check interface {
	// Type names the library check (e.g. "PercentOfNulls")
	Type() string
	Conditions() []check.Condition
}

// SingleDatasetCheck runs against one dataset
type SingleDatasetCheck interface {
	Check
	Run(ctx context.Context, ds *dataset.Dataset) (*check.Result, error)
}

// TrainTestCheck compares a train dataset with a test dataset
type TrainTestCheck interface {
	Check
	Run(ctx context.Context, train, test *dataset.Dataset) (*check.Result, error)
}

// CheckRunner executes checks on behalf of the dispatcher
type CheckRunner interface {
	RunSingle(ctx context.Context, c SingleDatasetCheck, ds *dataset.Dataset) (*check.Result, error)
	RunTrainTest(ctx context.Context, c TrainTestCheck, train, test *dataset.Dataset) (*check.Result, error)
}
