package validation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"datacheck/domain/check"
	"datacheck/domain/core"
	"datacheck/domain/dataset"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

const (
	ppsFolds   = 2
	ppsMaxBins = 10
	nullKey    = "\x00"
)

// FeatureLabelCorrelation scores how well each feature alone predicts the label
type FeatureLabelCorrelation struct {
	base[map[string]float64]
}

// NewFeatureLabelCorrelation creates the check
func NewFeatureLabelCorrelation() *FeatureLabelCorrelation {
	c := &FeatureLabelCorrelation{base: newBase[map[string]float64](
		"FeatureLabelCorrelation",
		"Feature Label Correlation",
		"Return the PPS (Predictive Power Score) of all features in relation to the label. "+
			"A high PPS means a single feature predicts the label well, which may indicate <i>leakage</i>.",
	)}
	c.params["n_folds"] = ppsFolds
	return c
}

// AddConditionFeaturePPSLessThan fails features whose PPS is at least threshold
func (c *FeatureLabelCorrelation) AddConditionFeaturePPSLessThan(threshold float64) *FeatureLabelCorrelation {
	name := "Features' Predictive Power Score is less than " + strconv.FormatFloat(threshold, 'f', -1, 64)
	params := map[string]interface{}{"threshold": threshold}
	c.addCondition(name, params, func(scores map[string]float64) (bool, string) {
		failing := map[string]string{}
		for feature, pps := range scores {
			if pps >= threshold {
				failing[feature] = formatNumber(pps)
			}
		}
		if len(failing) == 0 {
			return true, fmt.Sprintf("%d features have PPS below threshold", len(scores))
		}
		return false, fmt.Sprintf("Found %d out of %d features with PPS above threshold: %s",
			len(failing), len(scores), formatScores(failing))
	})
	return c
}

// Run scores every feature against the label
func (c *FeatureLabelCorrelation) Run(ctx context.Context, ds *dataset.Dataset) (*check.Result, error) {
	if !ds.HasLabel() {
		return nil, core.ErrLabelRequired
	}

	labels := ds.LabelValues()
	rows := make([]int, 0, len(labels))
	for i, l := range labels {
		if !dataset.IsNull(l) {
			rows = append(rows, i)
		}
	}
	if len(rows) < ppsFolds {
		return nil, core.NewInsufficientSamplesError("labelled rows", len(rows), ppsFolds)
	}

	target := make([]string, len(rows))
	for i, r := range rows {
		target[i] = labels[r]
	}
	regression := dataset.InferKind(target) == dataset.KindNumeric

	features := ds.Features()
	scores := make([]float64, len(features))
	g, gctx := errgroup.WithContext(ctx)
	for i, feature := range features {
		i, feature := i, feature
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			column := ds.Frame.Column(feature)
			values := make([]string, len(rows))
			for j, r := range rows {
				values[j] = column[r]
			}
			scores[i] = predictivePowerScore(values, target, regression)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	value := make(map[string]float64, len(features))
	for i, feature := range features {
		value[feature] = scores[i]
	}
	return c.finish(value), nil
}

// predictivePowerScore cross-validates a single-feature lookup model against
// a naive baseline. Rows alternate between folds.
func predictivePowerScore(feature, target []string, regression bool) float64 {
	numeric := dataset.InferKind(feature) == dataset.KindNumeric

	var total float64
	for fold := 0; fold < ppsFolds; fold++ {
		var trainIdx, evalIdx []int
		for i := range target {
			if i%ppsFolds == fold {
				evalIdx = append(evalIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		keyOf := categoricalKey
		if numeric {
			keyOf = binKey(pick(feature, trainIdx))
		}
		if regression {
			total += regressionScore(feature, target, trainIdx, evalIdx, keyOf)
		} else {
			total += classificationScore(feature, target, trainIdx, evalIdx, keyOf)
		}
	}
	return total / ppsFolds
}

func pick(values []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

func categoricalKey(cell string) string {
	if dataset.IsNull(cell) {
		return nullKey
	}
	return cell
}

// binKey buckets numbers by the deciles of the training values
func binKey(train []string) func(string) string {
	numbers := dataset.Numbers(train)
	var edges []float64
	for p := 1; p < ppsMaxBins; p++ {
		edge, err := stats.Percentile(numbers, float64(p*100/ppsMaxBins))
		if err != nil {
			break
		}
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}
	return func(cell string) string {
		v, ok := dataset.ParseNumber(cell)
		if !ok {
			return nullKey
		}
		return strconv.Itoa(sort.SearchFloat64s(edges, v))
	}
}

// classificationScore compares the accuracy of per-key majority classes with
// always predicting the overall majority class
func classificationScore(feature, target []string, trainIdx, evalIdx []int, keyOf func(string) string) float64 {
	byKey := map[string]map[string]int{}
	overall := map[string]int{}
	for _, i := range trainIdx {
		k := keyOf(feature[i])
		if byKey[k] == nil {
			byKey[k] = map[string]int{}
		}
		byKey[k][target[i]]++
		overall[target[i]]++
	}
	fallback := majority(overall)

	var hits, baseHits int
	for _, i := range evalIdx {
		predicted := fallback
		if counts, ok := byKey[keyOf(feature[i])]; ok {
			predicted = majority(counts)
		}
		if predicted == target[i] {
			hits++
		}
		if fallback == target[i] {
			baseHits++
		}
	}
	n := float64(len(evalIdx))
	accuracy, baseline := float64(hits)/n, float64(baseHits)/n
	if baseline >= 1 {
		return 0
	}
	return math.Max(0, (accuracy-baseline)/(1-baseline))
}

// regressionScore compares the mean absolute error of per-key means with
// always predicting the training median
func regressionScore(feature, target []string, trainIdx, evalIdx []int, keyOf func(string) string) float64 {
	sums := map[string][2]float64{}
	var labels []float64
	for _, i := range trainIdx {
		y, ok := dataset.ParseNumber(target[i])
		if !ok {
			continue
		}
		k := keyOf(feature[i])
		s := sums[k]
		sums[k] = [2]float64{s[0] + y, s[1] + 1}
		labels = append(labels, y)
	}
	median, err := stats.Median(labels)
	if err != nil {
		return 0
	}

	var modelErr, baseErr []float64
	for _, i := range evalIdx {
		y, ok := dataset.ParseNumber(target[i])
		if !ok {
			continue
		}
		predicted := median
		if s, ok := sums[keyOf(feature[i])]; ok && s[1] > 0 {
			predicted = s[0] / s[1]
		}
		modelErr = append(modelErr, math.Abs(y-predicted))
		baseErr = append(baseErr, math.Abs(y-median))
	}
	mae, err := stats.Mean(modelErr)
	if err != nil {
		return 0
	}
	baseMAE, err := stats.Mean(baseErr)
	if err != nil || baseMAE == 0 {
		return 0
	}
	return math.Max(0, 1-mae/baseMAE)
}

// majority returns the most frequent class, breaking ties by name
func majority(counts map[string]int) string {
	best, bestN := "", -1
	for class, n := range counts {
		if n > bestN || (n == bestN && class < best) {
			best, bestN = class, n
		}
	}
	return best
}
