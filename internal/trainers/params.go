package trainers

import (
	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
)

// Configuration keys shared across the catalog.
const (
	LabelColumn       = "LabelColumnName"
	FeatureColumn     = "FeatureColumnName"
	WeightColumn      = "ExampleWeightColumnName"
	RowGroupColumn    = "RowGroupColumnName"
	Loss              = "LossFunction"
	Rank              = "Rank"
	Oversampling      = "Oversampling"
	EnsureZeroMean    = "EnsureZeroMean"
	Seed              = "Seed"
	LearningRate      = "LearningRate"
	DecreaseRate      = "DecreaseLearningRate"
	L1Regularization  = "L1Regularization"
	L2Regularization  = "L2Regularization"
	Iterations        = "NumberOfIterations"
	Tolerance         = "OptimizationTolerance"
	HistorySize       = "HistorySize"
	EnforceNonNeg     = "EnforceNonNegativity"
	Leaves            = "NumberOfLeaves"
	Trees             = "NumberOfTrees"
	MinExamplesInLeaf = "MinimumExampleCountPerLeaf"
	MaxBins           = "MaximumBinCountPerFeature"
	Clusters          = "NumberOfClusters"
)

func str(name string) models.Param {
	return models.Param{Name: name, Type: models.TypeString}
}

func i32(name string) models.Param {
	return models.Param{Name: name, Type: models.TypeInt32}
}

func f32(name string) models.Param {
	return models.Param{Name: name, Type: models.TypeFloat32}
}

func f64(name string) models.Param {
	return models.Param{Name: name, Type: models.TypeFloat64}
}

func flag(name string) models.Param {
	return models.Param{Name: name, Type: models.TypeBool}
}

// weight is absent for unweighted training.
func weight() models.Param {
	return models.Param{Name: WeightColumn, Type: models.TypeColumn, Optional: true}
}

func loss() models.Param {
	return models.Param{Name: Loss, Type: models.TypeString, Optional: true, Default: string(mlctx.LossDefault)}
}

func params(ps ...models.Param) []models.Param {
	return ps
}

// supervised is label, features and the optional weight, the prefix most
// trainers share.
func supervised(rest ...models.Param) []models.Param {
	return append(params(str(LabelColumn), str(FeatureColumn), weight()), rest...)
}

var defaultLosses = []mlctx.LossFunction{mlctx.LossDefault}
