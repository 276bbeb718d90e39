// Package mlctx is the boundary to the learning library. A Context exposes
// one trainer factory set per task family; each factory takes the trainer's
// arguments positionally and returns an Estimator.
//
// The factories built by New validate their arguments and describe the
// trainer they would run; they do not train anything. A training backend
// supplies its own family implementations through the Context fields.
//
// Loss selection is not implemented: every trainer that accepts a
// LossFunction only supports LossDefault.
package mlctx

import "errors"

// ErrUnsupported is returned by factories that reject an argument or a
// combination of arguments.
var ErrUnsupported = errors.New("unsupported parameter combination")

type AnomalyDetectionTrainers interface {
	RandomizedPca(featureColumn string, weightColumn Column, rank, oversampling int32, ensureZeroMean bool, seed int32) (Estimator, error)
}

type BinaryClassificationTrainers interface {
	AveragedPerceptron(labelColumn, featureColumn string, loss LossFunction, learningRate float32, decreaseLearningRate bool, l2Regularization float32, numberOfIterations int32) (Estimator, error)
	SdcaLogisticRegression(labelColumn, featureColumn string, weightColumn Column, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error)
	SdcaNonCalibrated(labelColumn, featureColumn string, weightColumn Column, loss LossFunction, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error)
	SymbolicSgdLogisticRegression(labelColumn, featureColumn string, numberOfIterations int32) (Estimator, error)
	SgdCalibrated(labelColumn, featureColumn string, weightColumn Column, numberOfIterations int32, learningRate float64, l2Regularization float32) (Estimator, error)
	SgdNonCalibrated(labelColumn, featureColumn string, weightColumn Column, loss LossFunction, numberOfIterations int32, learningRate float64, l2Regularization float32) (Estimator, error)
	LbfgsLogisticRegression(labelColumn, featureColumn string, weightColumn Column, l1Regularization, l2Regularization, optimizationTolerance float32, historySize int32, enforceNonNegativity bool) (Estimator, error)
	LightGbm(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, minimumExampleCountPerLeaf int32, learningRate float64, numberOfIterations int32) (Estimator, error)
	FastTree(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32, learningRate float64) (Estimator, error)
	FastForest(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32) (Estimator, error)
	Gam(labelColumn, featureColumn string, weightColumn Column, numberOfIterations, maximumBinCountPerFeature int32, learningRate float64) (Estimator, error)
	FieldAwareFactorizationMachine(featureColumn, labelColumn string, weightColumn Column) (Estimator, error)
	Prior(labelColumn string, weightColumn Column) (Estimator, error)
	LinearSvm(labelColumn, featureColumn string, weightColumn Column, numberOfIterations int32) (Estimator, error)
}

type ClusteringTrainers interface {
	KMeans(featureColumn string, weightColumn Column, numberOfClusters int32) (Estimator, error)
}

type MulticlassClassificationTrainers interface {
	LightGbm(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, minimumExampleCountPerLeaf int32, learningRate float64, numberOfIterations int32) (Estimator, error)
	SdcaMaximumEntropy(labelColumn, featureColumn string, weightColumn Column, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error)
	SdcaNonCalibrated(labelColumn, featureColumn string, weightColumn Column, loss LossFunction, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error)
	LbfgsMaximumEntropy(labelColumn, featureColumn string, weightColumn Column, l1Regularization, l2Regularization, optimizationTolerance float32, historySize int32, enforceNonNegativity bool) (Estimator, error)
	NaiveBayes(labelColumn, featureColumn string) (Estimator, error)
}

type RankingTrainers interface {
	LightGbm(labelColumn, featureColumn, rowGroupColumn string, weightColumn Column, numberOfLeaves, minimumExampleCountPerLeaf int32, learningRate float64, numberOfIterations int32) (Estimator, error)
	FastTree(labelColumn, featureColumn, rowGroupColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32, learningRate float64) (Estimator, error)
}

type RegressionTrainers interface {
	LbfgsPoissonRegression(labelColumn, featureColumn string, weightColumn Column, l1Regularization, l2Regularization, optimizationTolerance float32, historySize int32, enforceNonNegativity bool) (Estimator, error)
	LightGbm(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, minimumExampleCountPerLeaf int32, learningRate float64, numberOfIterations int32) (Estimator, error)
	Sdca(labelColumn, featureColumn string, weightColumn Column, loss LossFunction, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error)
	Ols(labelColumn, featureColumn string, weightColumn Column) (Estimator, error)
	OnlineGradientDescent(labelColumn, featureColumn string, loss LossFunction, learningRate float32, decreaseLearningRate bool, l2Regularization float32, numberOfIterations int32) (Estimator, error)
	FastTree(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32, learningRate float64) (Estimator, error)
	FastTreeTweedie(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32, learningRate float64) (Estimator, error)
	FastForest(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32) (Estimator, error)
	Gam(labelColumn, featureColumn string, weightColumn Column, numberOfIterations, maximumBinCountPerFeature int32, learningRate float64) (Estimator, error)
}

// Context is the per-session handle to the learning library. It is not
// modified after construction and may be shared between goroutines.
type Context struct {
	AnomalyDetection         AnomalyDetectionTrainers
	BinaryClassification     BinaryClassificationTrainers
	MulticlassClassification MulticlassClassificationTrainers
	Clustering               ClusteringTrainers
	Ranking                  RankingTrainers
	Regression               RegressionTrainers
}

// New returns a Context whose factories validate arguments and produce
// descriptive Trainer estimators.
func New() *Context {
	return &Context{
		AnomalyDetection:         anomalyDetection{},
		BinaryClassification:     binaryClassification{},
		MulticlassClassification: multiclassClassification{},
		Clustering:               clustering{},
		Ranking:                  ranking{},
		Regression:               regression{},
	}
}

// Supports reports whether c has factories for family f.
func (c *Context) Supports(f Family) bool {
	if c == nil {
		return false
	}
	switch f {
	case AnomalyDetection:
		return c.AnomalyDetection != nil
	case BinaryClassification:
		return c.BinaryClassification != nil
	case MulticlassClassification:
		return c.MulticlassClassification != nil
	case Clustering:
		return c.Clustering != nil
	case Ranking:
		return c.Ranking != nil
	case Regression:
		return c.Regression != nil
	}
	return false
}
