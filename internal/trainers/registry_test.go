package trainers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/riahtu/pmtrain/internal/bind"
	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validNode returns a node that satisfies every required param of d.
func validNode(d models.Descriptor) models.Node {
	node := models.Node{models.KindField: d.Kind}
	for _, p := range d.Params {
		if p.Optional {
			continue
		}
		switch p.Type {
		case models.TypeString:
			node[p.Name] = map[string]string{
				LabelColumn:    "Label",
				FeatureColumn:  "Features",
				RowGroupColumn: "GroupId",
			}[p.Name]
		case models.TypeInt32:
			switch p.Name {
			case Leaves:
				node[p.Name] = json.Number("20")
			case MaxBins:
				node[p.Name] = json.Number("255")
			default:
				node[p.Name] = json.Number("10")
			}
		case models.TypeFloat32, models.TypeFloat64:
			node[p.Name] = json.Number("0.1")
		case models.TypeBool:
			node[p.Name] = false
		}
	}
	return node
}

func TestCatalog_Shape(t *testing.T) {
	r := Default()
	assert.Equal(t, 32, r.Len())

	counts := map[mlctx.Family]int{}
	for _, d := range r.Descriptors() {
		counts[d.Family]++
	}
	assert.Equal(t, map[mlctx.Family]int{
		mlctx.AnomalyDetection:         1,
		mlctx.BinaryClassification:     14,
		mlctx.MulticlassClassification: 5,
		mlctx.Clustering:               1,
		mlctx.Ranking:                  2,
		mlctx.Regression:               9,
	}, counts)

	for _, f := range mlctx.Families {
		assert.NotEmpty(t, r.Family(f), f)
	}
}

func TestCatalog_Contracts(t *testing.T) {
	r := Default()
	var (
		lf       = []string{LabelColumn, FeatureColumn}
		w        = []string{WeightColumn}
		wLoss    = []string{WeightColumn, Loss}
		sdca     = append(lf, L1Regularization, L2Regularization, Iterations)
		lbfgs    = append(lf, L1Regularization, L2Regularization, Tolerance, HistorySize, EnforceNonNeg)
		lightGbm = append(lf, Leaves, MinExamplesInLeaf, LearningRate, Iterations)
		fastTree = append(lf, Leaves, Trees, MinExamplesInLeaf, LearningRate)
		forest   = append(lf, Leaves, Trees, MinExamplesInLeaf)
		gam      = append(lf, Iterations, MaxBins, LearningRate)
		sgd      = append(lf, Iterations, LearningRate, L2Regularization)
		online   = append(lf, LearningRate, DecreaseRate, L2Regularization, Iterations)
	)
	tests := []struct {
		kind     string
		required []string
		optional []string
	}{
		{"RandomizedPcaTrainer", []string{FeatureColumn, Rank, Oversampling, EnsureZeroMean, Seed}, w},

		{"AveragedPerceptronTrainer", online, []string{Loss}},
		{"SdcaLogisticRegressionBinaryTrainer", sdca, w},
		{"SdcaNonCalibratedBinaryTrainer", sdca, wLoss},
		{"SymbolicSgdLogisticRegressionBinaryTrainer", append(lf, Iterations), nil},
		{"SgdCalibratedBinaryTrainer", sgd, w},
		{"SgdNonCalibratedTrainer", sgd, wLoss},
		{"LbfgsLogisticRegressionBinaryTrainer", lbfgs, w},
		{"LightGbmBinaryTrainer", lightGbm, w},
		{"FastTreeBinaryTrainer", fastTree, w},
		{"FastForestBinaryTrainer", forest, w},
		{"GamBinaryTrainer", gam, w},
		{"FieldAwareFactorizationMachineTrainer", lf, w},
		{"PriorTrainer", []string{LabelColumn}, w},
		{"LinearSvmTrainer", append(lf, Iterations), w},

		{"LightGbmMulticlassTrainer", lightGbm, w},
		{"SdcaMaximumEntropyMulticlassTrainer", sdca, w},
		{"SdcaNonCalibratedMulticlassTrainer", sdca, wLoss},
		{"LbfgsMaximumEntropyMulticlassTrainer", lbfgs, w},
		{"NaiveBayesMulticlassTrainer", lf, nil},

		{"KMeansTrainer", []string{FeatureColumn, Clusters}, w},

		{"LightGbmRankingTrainer", []string{LabelColumn, FeatureColumn, RowGroupColumn, Leaves, MinExamplesInLeaf, LearningRate, Iterations}, w},
		{"FastTreeRankingTrainer", []string{LabelColumn, FeatureColumn, RowGroupColumn, Leaves, Trees, MinExamplesInLeaf, LearningRate}, w},

		{"LbfgsPoissonRegressionTrainer", lbfgs, w},
		{"LightGbmRegressionTrainer", lightGbm, w},
		{"SdcaRegressionTrainer", sdca, wLoss},
		{"OlsTrainer", lf, w},
		{"OnlineGradientDescentTrainer", online, []string{Loss}},
		{"FastTreeRegressionTrainer", fastTree, w},
		{"FastTreeTweedieTrainer", fastTree, w},
		{"FastForestRegressionTrainer", forest, w},
		{"GamRegressionTrainer", gam, w},
	}

	covered := make([]string, 0, len(tests))
	for _, tt := range tests {
		covered = append(covered, tt.kind)
	}
	assert.ElementsMatch(t, r.Kinds(), covered, "every catalog entry has a contract row")

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			e, err := r.Resolve(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.required, e.Descriptor.Required())
			assert.Equal(t, tt.optional, e.Descriptor.Optional())
		})
	}

	lr, _ := Default().Resolve("SgdCalibratedBinaryTrainer")
	p, ok := lr.Descriptor.Param(LearningRate)
	require.True(t, ok)
	assert.Equal(t, models.TypeFloat64, p.Type)

	ap, _ := Default().Resolve("AveragedPerceptronTrainer")
	p, _ = ap.Descriptor.Param(LearningRate)
	assert.Equal(t, models.TypeFloat32, p.Type)
	assert.Equal(t, []mlctx.LossFunction{mlctx.LossDefault}, ap.Descriptor.Losses)
}

func TestEveryEntry_BuildsFromValidNode(t *testing.T) {
	lc := mlctx.New()
	for _, kind := range Default().Kinds() {
		t.Run(kind, func(t *testing.T) {
			e, err := Default().Resolve(kind)
			require.NoError(t, err)

			est, err := e.Build(lc, validNode(e.Descriptor), "components[0]")
			require.NoError(t, err)
			assert.Equal(t, e.Descriptor.Family, est.Describe().Family)
		})
	}
}

// distinctNode gives every param of d its own value and returns the value
// each one should reach the factory with.
func distinctNode(d models.Descriptor) (models.Node, map[string]any) {
	node := models.Node{models.KindField: d.Kind}
	want := make(map[string]any, len(d.Params))
	for i, p := range d.Params {
		col := "col" + strconv.Itoa(i)
		f := 0.25 * float64(i+1)
		switch p.Type {
		case models.TypeString:
			if p.Name == Loss {
				node[p.Name] = string(mlctx.LossDefault)
				want[p.Name] = mlctx.LossDefault
				continue
			}
			node[p.Name] = col
			want[p.Name] = col
		case models.TypeColumn:
			node[p.Name] = col
			want[p.Name] = mlctx.ColumnName(col)
		case models.TypeInt32:
			n := int32(3 + 7*i)
			node[p.Name] = json.Number(strconv.Itoa(int(n)))
			want[p.Name] = n
		case models.TypeFloat32:
			node[p.Name] = json.Number(strconv.FormatFloat(f, 'g', -1, 64))
			want[p.Name] = float32(f)
		case models.TypeFloat64:
			node[p.Name] = json.Number(strconv.FormatFloat(f, 'g', -1, 64))
			want[p.Name] = f
		case models.TypeBool:
			node[p.Name] = true
			want[p.Name] = true
		}
	}
	return node, want
}

// argName maps a configuration key to the factory argument it feeds.
func argName(algorithm, key string) string {
	if key == Iterations && strings.HasPrefix(algorithm, "Sdca") {
		return "maximumNumberOfIterations"
	}
	return strings.ToLower(key[:1]) + key[1:]
}

func TestEveryEntry_RoutesEachValueToItsArgument(t *testing.T) {
	lc := mlctx.New()
	for _, d := range Default().Descriptors() {
		t.Run(d.Kind, func(t *testing.T) {
			e, err := Default().Resolve(d.Kind)
			require.NoError(t, err)

			node, want := distinctNode(d)
			est, err := e.Build(lc, node, "components[0]")
			require.NoError(t, err)

			info := est.Describe()
			assert.Len(t, info.Args, len(d.Params))
			for _, p := range d.Params {
				name := argName(info.Algorithm, p.Name)
				got, ok := info.Arg(name)
				if assert.True(t, ok, "no argument %s for %s", name, p.Name) {
					assert.Equal(t, want[p.Name], got, "%s -> %s", p.Name, name)
				}
			}
		})
	}
}

func TestSdca_RegularizationNotSwapped(t *testing.T) {
	e, err := Default().Resolve("SdcaLogisticRegression")
	require.NoError(t, err)

	node := validNode(e.Descriptor)
	node[L1Regularization] = json.Number("0.5")
	node[L2Regularization] = json.Number("0.75")
	est, err := e.Build(mlctx.New(), node, "")
	require.NoError(t, err)

	l1, _ := est.Describe().Arg("l1Regularization")
	l2, _ := est.Describe().Arg("l2Regularization")
	assert.Equal(t, float32(0.5), l1)
	assert.Equal(t, float32(0.75), l2)
}

func TestEveryRequiredParam_ReportedWhenMissing(t *testing.T) {
	lc := mlctx.New()
	for _, d := range Default().Descriptors() {
		e, _ := Default().Resolve(d.Kind)
		for _, name := range d.Required() {
			t.Run(d.Kind+"/"+name, func(t *testing.T) {
				node := validNode(d)
				delete(node, name)

				est, err := e.Build(lc, node, "components[4]")
				require.Error(t, err)
				assert.Nil(t, est)
				assert.True(t, errors.Is(err, bind.ErrFieldMissing))

				var be *bind.Error
				require.True(t, errors.As(err, &be))
				assert.Equal(t, name, be.Field)
				assert.Equal(t, "components[4]", be.Path)
				assert.Equal(t, d.Kind, be.Identifier)
			})
		}
	}
}

func TestBuild_FactoryRejectionIsUnsupportedCombination(t *testing.T) {
	e, err := Default().Resolve("SdcaRegressionTrainer")
	require.NoError(t, err)

	node := validNode(e.Descriptor)
	node[Loss] = "Poisson"
	_, err = e.Build(mlctx.New(), node, "components[0]")
	require.Error(t, err)
	assert.True(t, errors.Is(err, bind.ErrUnsupportedCombination))
	assert.True(t, errors.Is(err, mlctx.ErrUnsupported))

	node[Loss] = "Default"
	_, err = e.Build(mlctx.New(), node, "components[0]")
	assert.NoError(t, err)
}

func TestBuild_MissingFamily(t *testing.T) {
	e, err := Default().Resolve("KMeans")
	require.NoError(t, err)

	lc := mlctx.New()
	lc.Clustering = nil
	_, err = e.Build(lc, validNode(e.Descriptor), "components[0]")
	assert.True(t, errors.Is(err, bind.ErrUnsupportedCombination))
}

func TestBuild_WeightColumn(t *testing.T) {
	e, err := Default().Resolve("Ols")
	require.NoError(t, err)
	lc := mlctx.New()

	unweighted, err := e.Build(lc, validNode(e.Descriptor), "")
	require.NoError(t, err)
	w, ok := unweighted.Describe().Arg("exampleWeightColumnName")
	require.True(t, ok)
	assert.Equal(t, mlctx.NoColumn, w)

	node := validNode(e.Descriptor)
	node[WeightColumn] = "Weight"
	weighted, err := e.Build(lc, node, "")
	require.NoError(t, err)
	w, _ = weighted.Describe().Arg("exampleWeightColumnName")
	assert.Equal(t, mlctx.ColumnName("Weight"), w)
}

func TestResolve(t *testing.T) {
	r := Default()

	byAlias, err := r.Resolve("KMeans")
	require.NoError(t, err)
	byKind, err := r.Resolve("KMeansTrainer")
	require.NoError(t, err)
	assert.Same(t, byKind, byAlias)

	_, err = r.Resolve("NotARealAlgorithm")
	require.Error(t, err)
	assert.True(t, errors.Is(err, bind.ErrUnknownAlgorithm))
	var be *bind.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "NotARealAlgorithm", be.Identifier)
	assert.Empty(t, be.Detail)

	_, err = r.Resolve("kmeans")
	require.True(t, errors.As(err, &be))
	assert.Equal(t, `did you mean "KMeans"?`, be.Detail)

	_, err = r.Resolve("fasttreebinary")
	require.True(t, errors.As(err, &be))
	assert.Equal(t, `did you mean "FastTreeBinaryTrainer"?`, be.Detail)
}

func TestResolveNode(t *testing.T) {
	r := Default()

	e, err := r.ResolveNode(models.Node{"Kind": "Ols", "id": "n1", "x": 10}, "components[0]")
	require.NoError(t, err)
	assert.Equal(t, "OlsTrainer", e.Descriptor.Kind)

	_, err = r.ResolveNode(models.Node{"Kind": "NotARealAlgorithm"}, "components[2]")
	var be *bind.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, bind.UnknownAlgorithm, be.Kind)
	assert.Equal(t, "components[2]", be.Path)

	_, err = r.ResolveNode(models.Node{"FeatureColumnName": "Features"}, "components[1]")
	assert.True(t, errors.Is(err, bind.ErrFieldMissing))

	_, err = r.ResolveNode(models.Node{"Kind": 7}, "components[1]")
	assert.True(t, errors.Is(err, bind.ErrTypeMismatch))
}

func TestNewRegistry_RejectsInvalidCatalogs(t *testing.T) {
	noop := func(*mlctx.Context, bind.Values) (mlctx.Estimator, error) { return nil, nil }
	ols := Entry{Descriptor: models.Descriptor{Kind: "OlsTrainer", Aliases: []string{"Ols"}, Family: mlctx.Regression}, Construct: noop}

	tests := []struct {
		name    string
		entries []Entry
		msg     string
	}{
		{"duplicate kind", []Entry{ols, ols}, "already registered"},
		{"alias collides with kind", []Entry{ols, {
			Descriptor: models.Descriptor{Kind: "Ols", Family: mlctx.Regression}, Construct: noop,
		}}, "already registered"},
		{"no family", []Entry{{Descriptor: models.Descriptor{Kind: "X"}, Construct: noop}}, "unknown family"},
		{"no constructor", []Entry{{Descriptor: models.Descriptor{Kind: "X", Family: mlctx.Ranking}}}, "no constructor"},
		{"duplicate param", []Entry{{
			Descriptor: models.Descriptor{Kind: "X", Family: mlctx.Ranking, Params: params(str(LabelColumn), str(LabelColumn))},
			Construct:  noop,
		}}, "declared twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.entries)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
