package mlctx

import (
	"fmt"
	"strings"
)

// Trainer is the estimator produced by the factories returned from New.
type Trainer struct {
	family    Family
	algorithm string
	args      []Arg
}

func (t *Trainer) Describe() StageInfo {
	args := make([]Arg, len(t.args))
	copy(args, t.args)
	return StageInfo{Family: t.family, Algorithm: t.algorithm, Args: args}
}

// checks collects argument violations for one factory call.
type checks []string

func (c *checks) column(name, value string) {
	if value == "" {
		*c = append(*c, fmt.Sprintf("%s must name a column", name))
	}
}

func (c *checks) distinct(aName, a, bName, b string) {
	if a != "" && a == b {
		*c = append(*c, fmt.Sprintf("%s and %s both use column %q", aName, bName, a))
	}
}

func (c *checks) atLeast(name string, value, min int32) {
	if value < min {
		*c = append(*c, fmt.Sprintf("%s must be at least %d, got %d", name, min, value))
	}
}

func (c *checks) positive(name string, value float64) {
	if !(value > 0) {
		*c = append(*c, fmt.Sprintf("%s must be positive, got %g", name, value))
	}
}

func (c *checks) nonNegative(name string, value float64) {
	if !(value >= 0) {
		*c = append(*c, fmt.Sprintf("%s must not be negative, got %g", name, value))
	}
}

func (c *checks) loss(value LossFunction) {
	if value != LossDefault {
		*c = append(*c, fmt.Sprintf("loss function %q is not supported, only %q", value, LossDefault))
	}
}

func (c *checks) labelFeature(label, feature string) {
	c.column("labelColumnName", label)
	c.column("featureColumnName", feature)
	c.distinct("labelColumnName", label, "featureColumnName", feature)
}

func newTrainer(family Family, algorithm string, c checks, args ...Arg) (Estimator, error) {
	if len(c) > 0 {
		return nil, fmt.Errorf("%w: %s.%s: %s", ErrUnsupported, family, algorithm, strings.Join(c, "; "))
	}
	return &Trainer{family: family, algorithm: algorithm, args: args}, nil
}

func arg(name string, value any) Arg {
	return Arg{Name: name, Value: value}
}

type anomalyDetection struct{}

func (anomalyDetection) RandomizedPca(featureColumn string, weightColumn Column, rank, oversampling int32, ensureZeroMean bool, seed int32) (Estimator, error) {
	var c checks
	c.column("featureColumnName", featureColumn)
	c.atLeast("rank", rank, 1)
	c.atLeast("oversampling", oversampling, 0)
	return newTrainer(AnomalyDetection, "RandomizedPca", c,
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn),
		arg("rank", rank),
		arg("oversampling", oversampling),
		arg("ensureZeroMean", ensureZeroMean),
		arg("seed", seed))
}

type binaryClassification struct{}

func (binaryClassification) AveragedPerceptron(labelColumn, featureColumn string, loss LossFunction, learningRate float32, decreaseLearningRate bool, l2Regularization float32, numberOfIterations int32) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.loss(loss)
	c.positive("learningRate", float64(learningRate))
	c.nonNegative("l2Regularization", float64(l2Regularization))
	c.atLeast("numberOfIterations", numberOfIterations, 1)
	return newTrainer(BinaryClassification, "AveragedPerceptron", c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("lossFunction", loss),
		arg("learningRate", learningRate),
		arg("decreaseLearningRate", decreaseLearningRate),
		arg("l2Regularization", l2Regularization),
		arg("numberOfIterations", numberOfIterations))
}

func (binaryClassification) SdcaLogisticRegression(labelColumn, featureColumn string, weightColumn Column, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error) {
	return sdca(BinaryClassification, "SdcaLogisticRegression", labelColumn, featureColumn, weightColumn, nil, l2Regularization, l1Regularization, maximumNumberOfIterations)
}

func (binaryClassification) SdcaNonCalibrated(labelColumn, featureColumn string, weightColumn Column, loss LossFunction, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error) {
	return sdca(BinaryClassification, "SdcaNonCalibrated", labelColumn, featureColumn, weightColumn, &loss, l2Regularization, l1Regularization, maximumNumberOfIterations)
}

func (binaryClassification) SymbolicSgdLogisticRegression(labelColumn, featureColumn string, numberOfIterations int32) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.atLeast("numberOfIterations", numberOfIterations, 1)
	return newTrainer(BinaryClassification, "SymbolicSgdLogisticRegression", c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("numberOfIterations", numberOfIterations))
}

func (binaryClassification) SgdCalibrated(labelColumn, featureColumn string, weightColumn Column, numberOfIterations int32, learningRate float64, l2Regularization float32) (Estimator, error) {
	return sgd("SgdCalibrated", labelColumn, featureColumn, weightColumn, nil, numberOfIterations, learningRate, l2Regularization)
}

func (binaryClassification) SgdNonCalibrated(labelColumn, featureColumn string, weightColumn Column, loss LossFunction, numberOfIterations int32, learningRate float64, l2Regularization float32) (Estimator, error) {
	return sgd("SgdNonCalibrated", labelColumn, featureColumn, weightColumn, &loss, numberOfIterations, learningRate, l2Regularization)
}

func (binaryClassification) LbfgsLogisticRegression(labelColumn, featureColumn string, weightColumn Column, l1Regularization, l2Regularization, optimizationTolerance float32, historySize int32, enforceNonNegativity bool) (Estimator, error) {
	return lbfgs(BinaryClassification, "LbfgsLogisticRegression", labelColumn, featureColumn, weightColumn, l1Regularization, l2Regularization, optimizationTolerance, historySize, enforceNonNegativity)
}

func (binaryClassification) LightGbm(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, minimumExampleCountPerLeaf int32, learningRate float64, numberOfIterations int32) (Estimator, error) {
	return lightGbm(BinaryClassification, labelColumn, featureColumn, "", weightColumn, numberOfLeaves, minimumExampleCountPerLeaf, learningRate, numberOfIterations)
}

func (binaryClassification) FastTree(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32, learningRate float64) (Estimator, error) {
	return fastTree(BinaryClassification, "FastTree", labelColumn, featureColumn, "", weightColumn, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf, learningRate)
}

func (binaryClassification) FastForest(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32) (Estimator, error) {
	return fastForest(BinaryClassification, labelColumn, featureColumn, weightColumn, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf)
}

func (binaryClassification) Gam(labelColumn, featureColumn string, weightColumn Column, numberOfIterations, maximumBinCountPerFeature int32, learningRate float64) (Estimator, error) {
	return gam(BinaryClassification, labelColumn, featureColumn, weightColumn, numberOfIterations, maximumBinCountPerFeature, learningRate)
}

func (binaryClassification) FieldAwareFactorizationMachine(featureColumn, labelColumn string, weightColumn Column) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	return newTrainer(BinaryClassification, "FieldAwareFactorizationMachine", c,
		arg("featureColumnName", featureColumn),
		arg("labelColumnName", labelColumn),
		arg("exampleWeightColumnName", weightColumn))
}

func (binaryClassification) Prior(labelColumn string, weightColumn Column) (Estimator, error) {
	var c checks
	c.column("labelColumnName", labelColumn)
	return newTrainer(BinaryClassification, "Prior", c,
		arg("labelColumnName", labelColumn),
		arg("exampleWeightColumnName", weightColumn))
}

func (binaryClassification) LinearSvm(labelColumn, featureColumn string, weightColumn Column, numberOfIterations int32) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.atLeast("numberOfIterations", numberOfIterations, 1)
	return newTrainer(BinaryClassification, "LinearSvm", c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn),
		arg("numberOfIterations", numberOfIterations))
}

type clustering struct{}

func (clustering) KMeans(featureColumn string, weightColumn Column, numberOfClusters int32) (Estimator, error) {
	var c checks
	c.column("featureColumnName", featureColumn)
	c.atLeast("numberOfClusters", numberOfClusters, 1)
	return newTrainer(Clustering, "KMeans", c,
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn),
		arg("numberOfClusters", numberOfClusters))
}

type multiclassClassification struct{}

func (multiclassClassification) LightGbm(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, minimumExampleCountPerLeaf int32, learningRate float64, numberOfIterations int32) (Estimator, error) {
	return lightGbm(MulticlassClassification, labelColumn, featureColumn, "", weightColumn, numberOfLeaves, minimumExampleCountPerLeaf, learningRate, numberOfIterations)
}

func (multiclassClassification) SdcaMaximumEntropy(labelColumn, featureColumn string, weightColumn Column, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error) {
	return sdca(MulticlassClassification, "SdcaMaximumEntropy", labelColumn, featureColumn, weightColumn, nil, l2Regularization, l1Regularization, maximumNumberOfIterations)
}

func (multiclassClassification) SdcaNonCalibrated(labelColumn, featureColumn string, weightColumn Column, loss LossFunction, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error) {
	return sdca(MulticlassClassification, "SdcaNonCalibrated", labelColumn, featureColumn, weightColumn, &loss, l2Regularization, l1Regularization, maximumNumberOfIterations)
}

func (multiclassClassification) LbfgsMaximumEntropy(labelColumn, featureColumn string, weightColumn Column, l1Regularization, l2Regularization, optimizationTolerance float32, historySize int32, enforceNonNegativity bool) (Estimator, error) {
	return lbfgs(MulticlassClassification, "LbfgsMaximumEntropy", labelColumn, featureColumn, weightColumn, l1Regularization, l2Regularization, optimizationTolerance, historySize, enforceNonNegativity)
}

func (multiclassClassification) NaiveBayes(labelColumn, featureColumn string) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	return newTrainer(MulticlassClassification, "NaiveBayes", c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn))
}

type ranking struct{}

func (ranking) LightGbm(labelColumn, featureColumn, rowGroupColumn string, weightColumn Column, numberOfLeaves, minimumExampleCountPerLeaf int32, learningRate float64, numberOfIterations int32) (Estimator, error) {
	return lightGbm(Ranking, labelColumn, featureColumn, rowGroupColumn, weightColumn, numberOfLeaves, minimumExampleCountPerLeaf, learningRate, numberOfIterations)
}

func (ranking) FastTree(labelColumn, featureColumn, rowGroupColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32, learningRate float64) (Estimator, error) {
	return fastTree(Ranking, "FastTree", labelColumn, featureColumn, rowGroupColumn, weightColumn, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf, learningRate)
}

type regression struct{}

func (regression) LbfgsPoissonRegression(labelColumn, featureColumn string, weightColumn Column, l1Regularization, l2Regularization, optimizationTolerance float32, historySize int32, enforceNonNegativity bool) (Estimator, error) {
	return lbfgs(Regression, "LbfgsPoissonRegression", labelColumn, featureColumn, weightColumn, l1Regularization, l2Regularization, optimizationTolerance, historySize, enforceNonNegativity)
}

func (regression) LightGbm(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, minimumExampleCountPerLeaf int32, learningRate float64, numberOfIterations int32) (Estimator, error) {
	return lightGbm(Regression, labelColumn, featureColumn, "", weightColumn, numberOfLeaves, minimumExampleCountPerLeaf, learningRate, numberOfIterations)
}

func (regression) Sdca(labelColumn, featureColumn string, weightColumn Column, loss LossFunction, l2Regularization, l1Regularization float32, maximumNumberOfIterations int32) (Estimator, error) {
	return sdca(Regression, "Sdca", labelColumn, featureColumn, weightColumn, &loss, l2Regularization, l1Regularization, maximumNumberOfIterations)
}

func (regression) Ols(labelColumn, featureColumn string, weightColumn Column) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	return newTrainer(Regression, "Ols", c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn))
}

func (regression) OnlineGradientDescent(labelColumn, featureColumn string, loss LossFunction, learningRate float32, decreaseLearningRate bool, l2Regularization float32, numberOfIterations int32) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.loss(loss)
	c.positive("learningRate", float64(learningRate))
	c.nonNegative("l2Regularization", float64(l2Regularization))
	c.atLeast("numberOfIterations", numberOfIterations, 1)
	return newTrainer(Regression, "OnlineGradientDescent", c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("lossFunction", loss),
		arg("learningRate", learningRate),
		arg("decreaseLearningRate", decreaseLearningRate),
		arg("l2Regularization", l2Regularization),
		arg("numberOfIterations", numberOfIterations))
}

func (regression) FastTree(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32, learningRate float64) (Estimator, error) {
	return fastTree(Regression, "FastTree", labelColumn, featureColumn, "", weightColumn, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf, learningRate)
}

func (regression) FastTreeTweedie(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32, learningRate float64) (Estimator, error) {
	return fastTree(Regression, "FastTreeTweedie", labelColumn, featureColumn, "", weightColumn, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf, learningRate)
}

func (regression) FastForest(labelColumn, featureColumn string, weightColumn Column, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf int32) (Estimator, error) {
	return fastForest(Regression, labelColumn, featureColumn, weightColumn, numberOfLeaves, numberOfTrees, minimumExampleCountPerLeaf)
}

func (regression) Gam(labelColumn, featureColumn string, weightColumn Column, numberOfIterations, maximumBinCountPerFeature int32, learningRate float64) (Estimator, error) {
	return gam(Regression, labelColumn, featureColumn, weightColumn, numberOfIterations, maximumBinCountPerFeature, learningRate)
}

// Shared factories for algorithms offered by several families.

func sdca(family Family, algorithm, labelColumn, featureColumn string, weightColumn Column, loss *LossFunction, l2, l1 float32, iterations int32) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.nonNegative("l2Regularization", float64(l2))
	c.nonNegative("l1Regularization", float64(l1))
	c.atLeast("maximumNumberOfIterations", iterations, 1)
	args := []Arg{
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn),
	}
	if loss != nil {
		c.loss(*loss)
		args = append(args, arg("lossFunction", *loss))
	}
	args = append(args,
		arg("l2Regularization", l2),
		arg("l1Regularization", l1),
		arg("maximumNumberOfIterations", iterations))
	return newTrainer(family, algorithm, c, args...)
}

func sgd(algorithm, labelColumn, featureColumn string, weightColumn Column, loss *LossFunction, iterations int32, learningRate float64, l2 float32) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.atLeast("numberOfIterations", iterations, 1)
	c.positive("learningRate", learningRate)
	c.nonNegative("l2Regularization", float64(l2))
	args := []Arg{
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn),
	}
	if loss != nil {
		c.loss(*loss)
		args = append(args, arg("lossFunction", *loss))
	}
	args = append(args,
		arg("numberOfIterations", iterations),
		arg("learningRate", learningRate),
		arg("l2Regularization", l2))
	return newTrainer(BinaryClassification, algorithm, c, args...)
}

func lbfgs(family Family, algorithm, labelColumn, featureColumn string, weightColumn Column, l1, l2, tolerance float32, historySize int32, enforceNonNegativity bool) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.nonNegative("l1Regularization", float64(l1))
	c.nonNegative("l2Regularization", float64(l2))
	c.positive("optimizationTolerance", float64(tolerance))
	c.atLeast("historySize", historySize, 1)
	return newTrainer(family, algorithm, c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn),
		arg("l1Regularization", l1),
		arg("l2Regularization", l2),
		arg("optimizationTolerance", tolerance),
		arg("historySize", historySize),
		arg("enforceNonNegativity", enforceNonNegativity))
}

// rowGroupColumn is only passed for ranking.
func lightGbm(family Family, labelColumn, featureColumn, rowGroupColumn string, weightColumn Column, leaves, minExamples int32, learningRate float64, iterations int32) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.atLeast("numberOfLeaves", leaves, 2)
	c.atLeast("minimumExampleCountPerLeaf", minExamples, 1)
	c.positive("learningRate", learningRate)
	c.atLeast("numberOfIterations", iterations, 1)
	args := []Arg{
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
	}
	if family == Ranking {
		c.column("rowGroupColumnName", rowGroupColumn)
		c.distinct("labelColumnName", labelColumn, "rowGroupColumnName", rowGroupColumn)
		c.distinct("featureColumnName", featureColumn, "rowGroupColumnName", rowGroupColumn)
		args = append(args, arg("rowGroupColumnName", rowGroupColumn))
	}
	args = append(args,
		arg("exampleWeightColumnName", weightColumn),
		arg("numberOfLeaves", leaves),
		arg("minimumExampleCountPerLeaf", minExamples),
		arg("learningRate", learningRate),
		arg("numberOfIterations", iterations))
	return newTrainer(family, "LightGbm", c, args...)
}

func fastTree(family Family, algorithm, labelColumn, featureColumn, rowGroupColumn string, weightColumn Column, leaves, trees, minExamples int32, learningRate float64) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.atLeast("numberOfLeaves", leaves, 2)
	c.atLeast("numberOfTrees", trees, 1)
	c.atLeast("minimumExampleCountPerLeaf", minExamples, 1)
	c.positive("learningRate", learningRate)
	args := []Arg{
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
	}
	if family == Ranking {
		c.column("rowGroupColumnName", rowGroupColumn)
		c.distinct("labelColumnName", labelColumn, "rowGroupColumnName", rowGroupColumn)
		c.distinct("featureColumnName", featureColumn, "rowGroupColumnName", rowGroupColumn)
		args = append(args, arg("rowGroupColumnName", rowGroupColumn))
	}
	args = append(args,
		arg("exampleWeightColumnName", weightColumn),
		arg("numberOfLeaves", leaves),
		arg("numberOfTrees", trees),
		arg("minimumExampleCountPerLeaf", minExamples),
		arg("learningRate", learningRate))
	return newTrainer(family, algorithm, c, args...)
}

func fastForest(family Family, labelColumn, featureColumn string, weightColumn Column, leaves, trees, minExamples int32) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.atLeast("numberOfLeaves", leaves, 2)
	c.atLeast("numberOfTrees", trees, 1)
	c.atLeast("minimumExampleCountPerLeaf", minExamples, 1)
	return newTrainer(family, "FastForest", c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn),
		arg("numberOfLeaves", leaves),
		arg("numberOfTrees", trees),
		arg("minimumExampleCountPerLeaf", minExamples))
}

func gam(family Family, labelColumn, featureColumn string, weightColumn Column, iterations, maxBins int32, learningRate float64) (Estimator, error) {
	var c checks
	c.labelFeature(labelColumn, featureColumn)
	c.atLeast("numberOfIterations", iterations, 1)
	c.atLeast("maximumBinCountPerFeature", maxBins, 2)
	c.positive("learningRate", learningRate)
	return newTrainer(family, "Gam", c,
		arg("labelColumnName", labelColumn),
		arg("featureColumnName", featureColumn),
		arg("exampleWeightColumnName", weightColumn),
		arg("numberOfIterations", iterations),
		arg("maximumBinCountPerFeature", maxBins),
		arg("learningRate", learningRate))
}
