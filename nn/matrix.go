package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// randomDense fills a rows×cols matrix row by row from gen.
func randomDense(rows, cols int, gen func() float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = gen()
	}
	return mat.NewDense(rows, cols, data)
}

// vecMul returns x×W. W must have len(x) rows.
func vecMul(x mat.Vector, w mat.Matrix) *mat.VecDense {
	_, c := w.Dims()
	o := mat.NewVecDense(c, nil)
	o.MulVec(w.T(), x)
	return o
}

// transposeMul returns d×Wᵀ, carrying d back through the layer W feeds.
// W must have len(d) columns.
func transposeMul(d mat.Vector, w mat.Matrix) *mat.VecDense {
	r, _ := w.Dims()
	o := mat.NewVecDense(r, nil)
	o.MulVec(w, d)
	return o
}

func apply(fn func(float64) float64, v mat.Vector) *mat.VecDense {
	o := mat.NewVecDense(v.Len(), nil)
	for i := 0; i < v.Len(); i++ {
		o.SetVec(i, fn(v.AtVec(i)))
	}
	return o
}

func multiply(a, b mat.Vector) *mat.VecDense {
	o := mat.NewVecDense(a.Len(), nil)
	o.MulElemVec(a, b)
	return o
}

func subtract(a, b mat.Vector) *mat.VecDense {
	o := mat.NewVecDense(a.Len(), nil)
	o.SubVec(a, b)
	return o
}

// addOuter adds alpha·(a⊗b) to w in place.
func addOuter(w *mat.Dense, alpha float64, a, b mat.Vector) {
	w.RankOne(w, alpha, a, b)
}

// addScaled adds alpha·v to dst in place.
func addScaled(dst *mat.VecDense, alpha float64, v mat.Vector) {
	dst.AddScaledVec(dst, alpha, v)
}

func toSlice(v mat.Vector) []float64 {
	o := make([]float64, v.Len())
	for i := range o {
		o[i] = v.AtVec(i)
	}
	return o
}

// argMax returns the index of the largest element, the first on ties.
func argMax(v []float64) int {
	return floats.MaxIdx(v)
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
