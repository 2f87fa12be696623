package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestNewRequestID(t *testing.T) {
	if NewRequestID().String() == "" {
		t.Error("Expected generated request ID to be non-empty")
	}
}

func TestIsDatasetError(t *testing.T) {
	if !IsDatasetError(NewColumnNotFoundError("age")) {
		t.Error("Expected column error to be a dataset error")
	}
	if !IsDatasetError(NewInsufficientSamplesError("train", 1, 2)) {
		t.Error("Expected insufficient samples to be a dataset error")
	}
	if IsDatasetError(ErrMissingPrediction) {
		t.Error("Expected prediction error not to be a dataset error")
	}
	if IsDatasetError(errors.New("other")) {
		t.Error("Expected unrelated error not to be a dataset error")
	}
}
