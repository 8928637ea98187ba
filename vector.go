package tardis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func (v Vector3) slice() []float64 { return []float64{v.X, v.Y, v.Z} }

func vector3(s []float64) Vector3 { return Vector3{X: s[0], Y: s[1], Z: s[2]} }

// Norm returns the Euclidean length of v.
func (v Vector3) Norm() float64 { return floats.Norm(v.slice(), 2) }

// Dot returns the scalar product of v and o.
func (v Vector3) Dot(o Vector3) float64 { return floats.Dot(v.slice(), o.slice()) }

// Cross returns v × o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vector3) Scale(f float64) Vector3 { return Vector3{v.X * f, v.Y * f, v.Z * f} }

func (v Vector3) finite() bool {
	for _, c := range v.slice() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// r1 is a frame rotation about the first axis.
func r1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// r2 is a frame rotation about the second axis.
func r2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// r3 is a frame rotation about the third axis.
func r3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// mulVec applies m to v.
func mulVec(m mat.Matrix, v Vector3) Vector3 {
	var o mat.VecDense
	o.MulVec(m, mat.NewVecDense(3, v.slice()))
	return vector3(o.RawVector().Data)
}

// chain returns ms[0]·ms[1]·…·ms[n-1].
func chain(ms ...mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(ms[0])
	for _, m := range ms[1:] {
		var p mat.Dense
		p.Mul(out, m)
		out = &p
	}
	return out
}
