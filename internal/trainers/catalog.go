package trainers

import (
	"github.com/riahtu/pmtrain/internal/bind"
	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
)

// Catalog returns every built-in entry, grouped by family in
// mlctx.Families order.
func Catalog() []Entry {
	var all []Entry
	for _, group := range [][]Entry{
		anomalyDetection(),
		binaryClassification(),
		multiclassClassification(),
		clustering(),
		ranking(),
		regression(),
	} {
		all = append(all, group...)
	}
	return all
}

func entry(family mlctx.Family, kind string, aliases []string, ps []models.Param, construct Constructor) Entry {
	d := models.Descriptor{Kind: kind, Aliases: aliases, Family: family, Params: ps}
	if _, ok := d.Param(Loss); ok {
		d.Losses = defaultLosses
	}
	return Entry{Descriptor: d, Construct: construct}
}

func aka(names ...string) []string {
	return names
}

func sdcaParams(withLoss bool) []models.Param {
	ps := supervised(f32(L1Regularization), f32(L2Regularization), i32(Iterations))
	if withLoss {
		ps = append(ps, loss())
	}
	return ps
}

func lbfgsParams() []models.Param {
	return supervised(f32(L1Regularization), f32(L2Regularization), f32(Tolerance), i32(HistorySize), flag(EnforceNonNeg))
}

func lightGbmParams() []models.Param {
	return supervised(i32(Leaves), i32(MinExamplesInLeaf), f64(LearningRate), i32(Iterations))
}

func fastTreeParams() []models.Param {
	return supervised(i32(Leaves), i32(Trees), i32(MinExamplesInLeaf), f64(LearningRate))
}

func fastForestParams() []models.Param {
	return supervised(i32(Leaves), i32(Trees), i32(MinExamplesInLeaf))
}

func gamParams() []models.Param {
	return supervised(i32(Iterations), i32(MaxBins), f64(LearningRate))
}

func onlineParams() []models.Param {
	return params(str(LabelColumn), str(FeatureColumn), f32(LearningRate), flag(DecreaseRate), f32(L2Regularization), i32(Iterations), loss())
}

func sgdParams(withLoss bool) []models.Param {
	ps := supervised(i32(Iterations), f64(LearningRate), f32(L2Regularization))
	if withLoss {
		ps = append(ps, loss())
	}
	return ps
}

func anomalyDetection() []Entry {
	return []Entry{
		entry(mlctx.AnomalyDetection, "RandomizedPcaTrainer", aka("RandomizedPca"),
			params(str(FeatureColumn), weight(), i32(Rank), i32(Oversampling), flag(EnsureZeroMean), i32(Seed)),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.AnomalyDetection.RandomizedPca(v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Rank), v.Int32(Oversampling), v.Bool(EnsureZeroMean), v.Int32(Seed))
			}),
	}
}

func binaryClassification() []Entry {
	const f = mlctx.BinaryClassification
	return []Entry{
		entry(f, "AveragedPerceptronTrainer", aka("AveragedPerceptron"), onlineParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.AveragedPerceptron(v.String(LabelColumn), v.String(FeatureColumn), v.Loss(Loss),
					v.Float32(LearningRate), v.Bool(DecreaseRate), v.Float32(L2Regularization), v.Int32(Iterations))
			}),
		entry(f, "SdcaLogisticRegressionBinaryTrainer", aka("SdcaLogisticRegression"), sdcaParams(false),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.SdcaLogisticRegression(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Float32(L2Regularization), v.Float32(L1Regularization), v.Int32(Iterations))
			}),
		entry(f, "SdcaNonCalibratedBinaryTrainer", nil, sdcaParams(true),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.SdcaNonCalibrated(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Loss(Loss), v.Float32(L2Regularization), v.Float32(L1Regularization), v.Int32(Iterations))
			}),
		entry(f, "SymbolicSgdLogisticRegressionBinaryTrainer", aka("SymbolicSgdLogisticRegression"),
			params(str(LabelColumn), str(FeatureColumn), i32(Iterations)),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.SymbolicSgdLogisticRegression(v.String(LabelColumn), v.String(FeatureColumn), v.Int32(Iterations))
			}),
		entry(f, "SgdCalibratedBinaryTrainer", aka("SgdCalibrated"), sgdParams(false),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.SgdCalibrated(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Iterations), v.Float64(LearningRate), v.Float32(L2Regularization))
			}),
		entry(f, "SgdNonCalibratedTrainer", aka("SgdNonCalibrated"), sgdParams(true),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.SgdNonCalibrated(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Loss(Loss), v.Int32(Iterations), v.Float64(LearningRate), v.Float32(L2Regularization))
			}),
		entry(f, "LbfgsLogisticRegressionBinaryTrainer", aka("LbfgsLogisticRegression"), lbfgsParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.LbfgsLogisticRegression(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Float32(L1Regularization), v.Float32(L2Regularization), v.Float32(Tolerance), v.Int32(HistorySize), v.Bool(EnforceNonNeg))
			}),
		entry(f, "LightGbmBinaryTrainer", nil, lightGbmParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.LightGbm(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(MinExamplesInLeaf), v.Float64(LearningRate), v.Int32(Iterations))
			}),
		entry(f, "FastTreeBinaryTrainer", nil, fastTreeParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.FastTree(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(Trees), v.Int32(MinExamplesInLeaf), v.Float64(LearningRate))
			}),
		entry(f, "FastForestBinaryTrainer", nil, fastForestParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.FastForest(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(Trees), v.Int32(MinExamplesInLeaf))
			}),
		entry(f, "GamBinaryTrainer", nil, gamParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.Gam(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Iterations), v.Int32(MaxBins), v.Float64(LearningRate))
			}),
		// The factory takes features before label.
		entry(f, "FieldAwareFactorizationMachineTrainer", aka("FieldAwareFactorizationMachine"), supervised(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.FieldAwareFactorizationMachine(v.String(FeatureColumn), v.String(LabelColumn), v.Column(WeightColumn))
			}),
		entry(f, "PriorTrainer", aka("Prior"), params(str(LabelColumn), weight()),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.Prior(v.String(LabelColumn), v.Column(WeightColumn))
			}),
		entry(f, "LinearSvmTrainer", aka("LinearSvm"), supervised(i32(Iterations)),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.BinaryClassification.LinearSvm(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn), v.Int32(Iterations))
			}),
	}
}

func multiclassClassification() []Entry {
	const f = mlctx.MulticlassClassification
	return []Entry{
		entry(f, "LightGbmMulticlassTrainer", nil, lightGbmParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.MulticlassClassification.LightGbm(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(MinExamplesInLeaf), v.Float64(LearningRate), v.Int32(Iterations))
			}),
		entry(f, "SdcaMaximumEntropyMulticlassTrainer", aka("SdcaMaximumEntropy"), sdcaParams(false),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.MulticlassClassification.SdcaMaximumEntropy(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Float32(L2Regularization), v.Float32(L1Regularization), v.Int32(Iterations))
			}),
		entry(f, "SdcaNonCalibratedMulticlassTrainer", nil, sdcaParams(true),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.MulticlassClassification.SdcaNonCalibrated(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Loss(Loss), v.Float32(L2Regularization), v.Float32(L1Regularization), v.Int32(Iterations))
			}),
		entry(f, "LbfgsMaximumEntropyMulticlassTrainer", aka("LbfgsMaximumEntropy"), lbfgsParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.MulticlassClassification.LbfgsMaximumEntropy(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Float32(L1Regularization), v.Float32(L2Regularization), v.Float32(Tolerance), v.Int32(HistorySize), v.Bool(EnforceNonNeg))
			}),
		entry(f, "NaiveBayesMulticlassTrainer", aka("NaiveBayes"), params(str(LabelColumn), str(FeatureColumn)),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.MulticlassClassification.NaiveBayes(v.String(LabelColumn), v.String(FeatureColumn))
			}),
	}
}

func clustering() []Entry {
	return []Entry{
		entry(mlctx.Clustering, "KMeansTrainer", aka("KMeans"), params(str(FeatureColumn), weight(), i32(Clusters)),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Clustering.KMeans(v.String(FeatureColumn), v.Column(WeightColumn), v.Int32(Clusters))
			}),
	}
}

func ranking() []Entry {
	const f = mlctx.Ranking
	return []Entry{
		entry(f, "LightGbmRankingTrainer", nil,
			params(str(LabelColumn), str(FeatureColumn), str(RowGroupColumn), weight(),
				i32(Leaves), i32(MinExamplesInLeaf), f64(LearningRate), i32(Iterations)),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Ranking.LightGbm(v.String(LabelColumn), v.String(FeatureColumn), v.String(RowGroupColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(MinExamplesInLeaf), v.Float64(LearningRate), v.Int32(Iterations))
			}),
		entry(f, "FastTreeRankingTrainer", nil,
			params(str(LabelColumn), str(FeatureColumn), str(RowGroupColumn), weight(),
				i32(Leaves), i32(Trees), i32(MinExamplesInLeaf), f64(LearningRate)),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Ranking.FastTree(v.String(LabelColumn), v.String(FeatureColumn), v.String(RowGroupColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(Trees), v.Int32(MinExamplesInLeaf), v.Float64(LearningRate))
			}),
	}
}

func regression() []Entry {
	const f = mlctx.Regression
	return []Entry{
		entry(f, "LbfgsPoissonRegressionTrainer", aka("LbfgsPoissonRegression"), lbfgsParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.LbfgsPoissonRegression(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Float32(L1Regularization), v.Float32(L2Regularization), v.Float32(Tolerance), v.Int32(HistorySize), v.Bool(EnforceNonNeg))
			}),
		entry(f, "LightGbmRegressionTrainer", nil, lightGbmParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.LightGbm(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(MinExamplesInLeaf), v.Float64(LearningRate), v.Int32(Iterations))
			}),
		entry(f, "SdcaRegressionTrainer", aka("Sdca"), sdcaParams(true),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.Sdca(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Loss(Loss), v.Float32(L2Regularization), v.Float32(L1Regularization), v.Int32(Iterations))
			}),
		entry(f, "OlsTrainer", aka("Ols"), supervised(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.Ols(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn))
			}),
		entry(f, "OnlineGradientDescentTrainer", aka("OnlineGradientDescent"), onlineParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.OnlineGradientDescent(v.String(LabelColumn), v.String(FeatureColumn), v.Loss(Loss),
					v.Float32(LearningRate), v.Bool(DecreaseRate), v.Float32(L2Regularization), v.Int32(Iterations))
			}),
		entry(f, "FastTreeRegressionTrainer", nil, fastTreeParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.FastTree(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(Trees), v.Int32(MinExamplesInLeaf), v.Float64(LearningRate))
			}),
		entry(f, "FastTreeTweedieTrainer", aka("FastTreeTweedie"), fastTreeParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.FastTreeTweedie(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(Trees), v.Int32(MinExamplesInLeaf), v.Float64(LearningRate))
			}),
		entry(f, "FastForestRegressionTrainer", nil, fastForestParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.FastForest(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Leaves), v.Int32(Trees), v.Int32(MinExamplesInLeaf))
			}),
		entry(f, "GamRegressionTrainer", nil, gamParams(),
			func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error) {
				return lc.Regression.Gam(v.String(LabelColumn), v.String(FeatureColumn), v.Column(WeightColumn),
					v.Int32(Iterations), v.Int32(MaxBins), v.Float64(LearningRate))
			}),
	}
}
