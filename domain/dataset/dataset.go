package dataset

import (
	"datacheck/domain/core"
)

// Dataset is a frame together with its label designation. Train datasets carry
// a label column; test datasets usually do not.
type Dataset struct {
	Frame *Frame
	Label string
}

// WithLabel wraps a frame using the named column as label
func WithLabel(frame *Frame, label string) (*Dataset, error) {
	if frame.NumColumns() == 0 {
		return nil, core.ErrEmptyDataset
	}
	if !frame.HasColumn(label) {
		return nil, core.NewColumnNotFoundError(label)
	}
	return &Dataset{Frame: frame, Label: label}, nil
}

// LabelLast wraps a frame using its last column as label
func LabelLast(frame *Frame) (*Dataset, error) {
	if frame.NumColumns() == 0 {
		return nil, core.ErrEmptyDataset
	}
	return WithLabel(frame, frame.Columns[frame.NumColumns()-1])
}

// Unlabeled wraps a frame without a label column
func Unlabeled(frame *Frame) *Dataset {
	return &Dataset{Frame: frame}
}

// HasLabel reports whether a label column is designated
func (d *Dataset) HasLabel() bool {
	return d.Label != ""
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return d.Frame.NumRows()
}

// Features returns all columns except the label, in frame order
func (d *Dataset) Features() []string {
	features := make([]string, 0, d.Frame.NumColumns())
	for _, col := range d.Frame.Columns {
		if col != d.Label {
			features = append(features, col)
		}
	}
	return features
}

// LabelValues returns the label column, or nil for unlabeled datasets
func (d *Dataset) LabelValues() []string {
	if !d.HasLabel() {
		return nil
	}
	return d.Frame.Column(d.Label)
}

// SharedFeatures returns the features of d that also exist as columns in other,
// in the order they appear in d
func (d *Dataset) SharedFeatures(other *Dataset) []string {
	var shared []string
	for _, col := range d.Features() {
		if col == other.Label {
			continue
		}
		if other.Frame.HasColumn(col) {
			shared = append(shared, col)
		}
	}
	return shared
}
