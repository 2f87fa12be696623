package validation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"datacheck/domain/check"
	"datacheck/domain/core"
	"datacheck/domain/dataset"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Drift methods
const (
	MethodKolmogorovSmirnov = "Kolmogorov-Smirnov"
	MethodCramersV          = "Cramer's V"
)

// FeatureDriftScore is the drift of one feature between train and test
type FeatureDriftScore struct {
	Score  float64 `json:"Drift score"`
	Method string  `json:"Method"`
	PValue float64 `json:"P value"`
}

// FeatureDrift measures the per-feature distribution shift from train to test
type FeatureDrift struct {
	base[map[string]FeatureDriftScore]
}

// NewFeatureDrift creates the check
func NewFeatureDrift() *FeatureDrift {
	return &FeatureDrift{base: newBase[map[string]FeatureDriftScore](
		"FeatureDrift",
		"Feature Drift",
		"Calculate drift between train dataset and test dataset per feature, using statistical measures. "+
			"Numerical features use the <b>Kolmogorov-Smirnov</b> statistic and categorical features use <b>Cramer's V</b>.",
	)}
}

// AddConditionDriftScoreLessThan fails features whose drift score reaches the
// threshold for their kind
func (c *FeatureDrift) AddConditionDriftScoreLessThan(maxCategorical, maxNumeric float64) *FeatureDrift {
	name := fmt.Sprintf("categorical drift score < %s and numerical drift score < %s",
		strconv.FormatFloat(maxCategorical, 'f', -1, 64), strconv.FormatFloat(maxNumeric, 'f', -1, 64))
	params := map[string]interface{}{
		"max_allowed_categorical_score": maxCategorical,
		"max_allowed_numeric_score":     maxNumeric,
	}
	c.addCondition(name, params, func(scores map[string]FeatureDriftScore) (bool, string) {
		failing := map[string]string{}
		for feature, s := range scores {
			limit := maxNumeric
			if s.Method == MethodCramersV {
				limit = maxCategorical
			}
			if s.Score >= limit {
				failing[feature] = formatNumber(s.Score)
			}
		}
		if len(failing) == 0 {
			return true, fmt.Sprintf("Passed for %d columns out of %d columns", len(scores), len(scores))
		}
		return false, fmt.Sprintf("Failed for %d out of %d columns. Found columns with drift score above threshold: %s",
			len(failing), len(scores), formatScores(failing))
	})
	return c
}

// Run scores every feature shared by train and test
func (c *FeatureDrift) Run(ctx context.Context, train, test *dataset.Dataset) (*check.Result, error) {
	features := train.SharedFeatures(test)
	if len(features) == 0 {
		return nil, core.ErrNoSharedFeatures
	}

	scores := make([]FeatureDriftScore, len(features))
	g, gctx := errgroup.WithContext(ctx)
	for i, feature := range features {
		i, feature := i, feature
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trainCol, testCol := train.Frame.Column(feature), test.Frame.Column(feature)
			if kindOf(trainCol, testCol) == dataset.KindNumeric {
				scores[i] = kolmogorovSmirnov(dataset.Numbers(trainCol), dataset.Numbers(testCol))
			} else {
				scores[i] = cramersV(dataset.NonNull(trainCol), dataset.NonNull(testCol))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	value := make(map[string]FeatureDriftScore, len(features))
	for i, feature := range features {
		value[feature] = scores[i]
	}
	return c.finish(value), nil
}

func kolmogorovSmirnov(train, test []float64) FeatureDriftScore {
	score := FeatureDriftScore{Method: MethodKolmogorovSmirnov, PValue: 1}
	if len(train) == 0 || len(test) == 0 {
		return score
	}
	sort.Float64s(train)
	sort.Float64s(test)
	score.Score = stat.KolmogorovSmirnov(train, nil, test, nil)

	// Asymptotic two-sample p-value
	n := float64(len(train)*len(test)) / float64(len(train)+len(test))
	score.PValue = ksPValue(math.Sqrt(n) * score.Score)
	return score
}

// ksPValue evaluates the Kolmogorov distribution survival function
func ksPValue(lambda float64) float64 {
	if lambda < 1e-3 {
		return 1
	}
	var sum float64
	for k := 1; k <= 100; k++ {
		term := math.Exp(-2 * float64(k*k) * lambda * lambda)
		if k%2 == 0 {
			sum -= term
		} else {
			sum += term
		}
		if term < 1e-12 {
			break
		}
	}
	return math.Min(1, math.Max(0, 2*sum))
}

// cramersV measures association between category and dataset membership on
// the 2 x k contingency table of category counts
func cramersV(train, test []string) FeatureDriftScore {
	score := FeatureDriftScore{Method: MethodCramersV, PValue: 1}
	if len(train) == 0 || len(test) == 0 {
		return score
	}

	counts := map[string][2]float64{}
	for _, v := range train {
		c := counts[v]
		counts[v] = [2]float64{c[0] + 1, c[1]}
	}
	for _, v := range test {
		c := counts[v]
		counts[v] = [2]float64{c[0], c[1] + 1}
	}
	if len(counts) < 2 {
		return score
	}

	rowTotals := [2]float64{float64(len(train)), float64(len(test))}
	n := rowTotals[0] + rowTotals[1]
	var chiSq float64
	for _, c := range counts {
		colTotal := c[0] + c[1]
		for r := 0; r < 2; r++ {
			expected := rowTotals[r] * colTotal / n
			if expected > 0 {
				diff := c[r] - expected
				chiSq += diff * diff / expected
			}
		}
	}

	score.Score = math.Sqrt(chiSq / n)
	chiDist := distuv.ChiSquared{K: float64(len(counts) - 1)}
	score.PValue = 1 - chiDist.CDF(chiSq)
	return score
}

const (
	domainClassifierTrees = 50
	splitSeed             = 42
)

// MultivariateDriftValue reports the domain classifier's ability to tell train
// rows from test rows
type MultivariateDriftValue struct {
	AUC               float64            `json:"domain_classifier_auc"`
	DriftScore        float64            `json:"domain_classifier_drift_score"`
	FeatureImportance map[string]float64 `json:"domain_classifier_feature_importance"`
}

// MultivariateDrift trains a classifier to separate train from test rows
type MultivariateDrift struct {
	base[MultivariateDriftValue]
}

// NewMultivariateDrift creates the check
func NewMultivariateDrift() *MultivariateDrift {
	c := &MultivariateDrift{base: newBase[MultivariateDriftValue](
		"MultivariateDrift",
		"Multivariate Drift",
		"Calculate drift between the entire train and test datasets using a model trained to distinguish between them. "+
			"The drift score is <b>2 * AUC - 1</b> of the domain classifier on held out data.",
	)}
	c.params["n_trees"] = domainClassifierTrees
	return c
}

// AddConditionOverallDriftValueLessThan fails when the drift score reaches threshold
func (c *MultivariateDrift) AddConditionOverallDriftValueLessThan(threshold float64) *MultivariateDrift {
	name := "Drift value is less than " + strconv.FormatFloat(threshold, 'f', -1, 64)
	params := map[string]interface{}{"max_drift_value": threshold}
	c.addCondition(name, params, func(v MultivariateDriftValue) (bool, string) {
		info := fmt.Sprintf("Found drift value of: %s, corresponding to a domain classifier AUC of: %s",
			formatNumber(v.DriftScore), formatNumber(v.AUC))
		return v.DriftScore < threshold, info
	})
	return c
}

// Run trains the domain classifier on one half of each dataset and scores it
// on the other half
func (c *MultivariateDrift) Run(ctx context.Context, train, test *dataset.Dataset) (*check.Result, error) {
	features := train.SharedFeatures(test)
	if len(features) == 0 {
		return nil, core.ErrNoSharedFeatures
	}
	if train.Len() < 2 {
		return nil, core.NewInsufficientSamplesError("train", train.Len(), 2)
	}
	if test.Len() < 2 {
		return nil, core.NewInsufficientSamplesError("test", test.Len(), 2)
	}

	trainX, testX := encodeFeatures(train, test, features)
	trainFit, trainHeld := splitHalf(len(trainX))
	testFit, testHeld := splitHalf(len(testX))

	var (
		x     [][]float64
		class []int
	)
	for _, i := range trainFit {
		x = append(x, trainX[i])
		class = append(class, 0)
	}
	for _, i := range testFit {
		x = append(x, testX[i])
		class = append(class, 1)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: x, Class: class}
	forest.Train(domainClassifierTrees)

	var (
		probs  []float64
		isTest []bool
	)
	for _, i := range trainHeld {
		probs = append(probs, testProbability(forest.Vote(trainX[i])))
		isTest = append(isTest, false)
	}
	for _, i := range testHeld {
		probs = append(probs, testProbability(forest.Vote(testX[i])))
		isTest = append(isTest, true)
	}

	auc := rocAUC(probs, isTest)
	importance := make(map[string]float64, len(features))
	for i, feature := range features {
		importance[feature] = 0
		if i < len(forest.FeatureImportance) {
			importance[feature] = forest.FeatureImportance[i]
		}
	}
	return c.finish(MultivariateDriftValue{
		AUC:               auc,
		DriftScore:        math.Max(0, 2*auc-1),
		FeatureImportance: importance,
	}), nil
}

// testProbability reads the test class share from a forest vote. Rows the
// forest cannot score (short or NaN votes) count as undecided.
func testProbability(vote []float64) float64 {
	if len(vote) < 2 || math.IsNaN(vote[1]) || math.IsInf(vote[1], 0) {
		return 0.5
	}
	return vote[1]
}

// rocAUC integrates the ROC curve of scores against the positive labels
func rocAUC(scores []float64, positive []bool) float64 {
	scores, positive = finiteScores(scores, positive)
	if len(scores) < 2 {
		return 0.5
	}
	stat.SortWeightedLabeled(scores, positive, nil)
	tpr, fpr, _ := stat.ROC(nil, scores, positive, nil)
	if len(fpr) < 2 {
		return 0.5
	}
	return integrate.Trapezoidal(fpr, tpr)
}

// finiteScores drops NaN and infinite scores, which stat.ROC cannot order
func finiteScores(scores []float64, labels []bool) ([]float64, []bool) {
	keptScores := make([]float64, 0, len(scores))
	keptLabels := make([]bool, 0, len(labels))
	for i, score := range scores {
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		keptScores = append(keptScores, score)
		keptLabels = append(keptLabels, labels[i])
	}
	return keptScores, keptLabels
}

// splitHalf shuffles row indices with a fixed seed and returns the fitting
// half and the held out half
func splitHalf(n int) (fit, held []int) {
	perm := rand.New(rand.NewSource(splitSeed)).Perm(n)
	half := n / 2
	return perm[:half], perm[half:]
}

// encodeFeatures turns both datasets into numeric matrices. Numeric features
// are imputed with their combined median; categorical features become ordinal
// codes, with -1 for missing values.
func encodeFeatures(train, test *dataset.Dataset, features []string) ([][]float64, [][]float64) {
	trainX := newMatrix(train.Len(), len(features))
	testX := newMatrix(test.Len(), len(features))

	for j, feature := range features {
		trainCol, testCol := train.Frame.Column(feature), test.Frame.Column(feature)
		encode := ordinalEncoder(trainCol, testCol)
		if kindOf(trainCol, testCol) == dataset.KindNumeric {
			encode = medianImputer(trainCol, testCol)
		}
		for i, cell := range trainCol {
			trainX[i][j] = encode(cell)
		}
		for i, cell := range testCol {
			testX[i][j] = encode(cell)
		}
	}
	return trainX, testX
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func medianImputer(train, test []string) func(string) float64 {
	numbers := append(dataset.Numbers(train), dataset.Numbers(test)...)
	median, err := stats.Median(numbers)
	if err != nil {
		median = 0
	}
	return func(cell string) float64 {
		if v, ok := dataset.ParseNumber(cell); ok {
			return v
		}
		return median
	}
}

func ordinalEncoder(train, test []string) func(string) float64 {
	seen := map[string]struct{}{}
	for _, v := range dataset.NonNull(train) {
		seen[v] = struct{}{}
	}
	for _, v := range dataset.NonNull(test) {
		seen[v] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for v := range seen {
		categories = append(categories, v)
	}
	sort.Strings(categories)
	codes := make(map[string]float64, len(categories))
	for i, v := range categories {
		codes[v] = float64(i)
	}
	return func(cell string) float64 {
		if code, ok := codes[cell]; ok {
			return code
		}
		return -1
	}
}
