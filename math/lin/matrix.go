// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Matrix functions deal with the 3x3 matrices used throughout rigid-body
// dynamics: inertia tensors, rotation matrices derived from orientation
// quaternions, and the small linear solves the gyroscopic-torque and joint
// constraint code run against them.
//
// Note that this matrix implementation does not attempt to be all inclusive.
// Unused matrix methods, like arbitrary projection, are excluded since this
// package only ever needs to represent rotations and inertia tensors.
//
// Row or Column Major order? No matter the convention, the end result of a
// vector point (x, y, z) multiplied with a transform matrix must be:
//   x' = x*Xx + y*Yx + z*Zx
//   y' = x*Xy + y*Yy + z*Zy
//	 z' = x*Xz + y*Yz + z*Zz
// Where x, y, z is the original vector and X, Y, Z are the three axes of the
// coordinate system.
//
// This matrix implementation uses explicitly indexed, Row-Major, matrix
// members as follows:
//          3x3 M3
//	     [Xx, Xy, Xz]  X-Axis
//	     [Yx, Yy, Yz]  Y-Axis
//	     [Zx, Zy, Zz]  Z-Axis
//
// See appendix G of OpenGL Red Book for matrix algorithms. Also see:
// http://steve.hollasch.net/cgindex/math/matrix/column-vec.html

import (
	"log"
	"math"
)

// M3 is a 3x3 matrix where the matrix elements are individually addressable.
type M3 struct {
	Xx, Xy, Xz float64 // indices 0, 1, 2  [00, 01, 02]  X-Axis
	Yx, Yy, Yz float64 // indices 3, 4, 5  [10, 11, 12]  Y-Axis
	Zx, Zy, Zz float64 // indices 6, 7, 8  [20, 21, 22]  Z-Axis
}

// M3Z provides a reference zero matrix that can be used
// in calculations. It should never be changed.
var M3Z = &M3{
	0, 0, 0,
	0, 0, 0,
	0, 0, 0}

// M3I provides a reference identity matrix that can be used
// in calculations. It should never be changed.
var M3I = &M3{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1}

// Eq (==) returns true if all the elements in matrix m have the same value
// as the corresponding elements in matrix a.
func (m *M3) Eq(a *M3) bool {
	return true &&
		m.Xx == a.Xx && m.Xy == a.Xy && m.Xz == a.Xz &&
		m.Yx == a.Yx && m.Yy == a.Yy && m.Yz == a.Yz &&
		m.Zx == a.Zx && m.Zy == a.Zy && m.Zz == a.Zz
}

// Aeq (~=) almost equals returns true if all the elements in matrix m have
// essentially the same value as the corresponding elements in matrix a.
// Used where equals is unlikely to return true due to float precision.
func (m *M3) Aeq(a *M3) bool {
	return true &&
		Aeq(m.Xx, a.Xx) && Aeq(m.Xy, a.Xy) && Aeq(m.Xz, a.Xz) &&
		Aeq(m.Yx, a.Yx) && Aeq(m.Yy, a.Yy) && Aeq(m.Yz, a.Yz) &&
		Aeq(m.Zx, a.Zx) && Aeq(m.Zy, a.Zy) && Aeq(m.Zz, a.Zz)
}

// SetS (=) explicitly sets the matrix scaler values using the given scalers.
// The source matrix a is unchanged. The updated matrix m is returned.
// 	  Xx, Xy, Xz is the X Axis.
// 	  Yx, Yy, Yz is the Y Axis.
// 	  Zx, Zy, Zz is the Z Axis.
func (m *M3) SetS(Xx, Xy, Xz, Yx, Yy, Yz, Zx, Zy, Zz float64) *M3 {
	m.Xx, m.Xy, m.Xz = Xx, Xy, Xz
	m.Yx, m.Yy, m.Yz = Yx, Yy, Yz
	m.Zx, m.Zy, m.Zz = Zx, Zy, Zz
	return m
}

// Set (=) assigns all the scaler values from matrix a to the
// corresponding scaler values in matrix m.
// The source matrix a is unchanged. The updated matrix m is returned.
func (m *M3) Set(a *M3) *M3 {
	m.Xx, m.Xy, m.Xz = a.Xx, a.Xy, a.Xz
	m.Yx, m.Yy, m.Yz = a.Yx, a.Yy, a.Yz
	m.Zx, m.Zy, m.Zz = a.Zx, a.Zy, a.Zz
	return m
}

// Abs updates m to be the the absolute (non-negative) element values of the
// corresponding element values in matrix a. The source matrix a is unchanged.
// The updated matrix m is returned.
func (m *M3) Abs(a *M3) *M3 {
	m.Xx, m.Xy, m.Xz = math.Abs(a.Xx), math.Abs(a.Xy), math.Abs(a.Xz)
	m.Yx, m.Yy, m.Yz = math.Abs(a.Yx), math.Abs(a.Yy), math.Abs(a.Yz)
	m.Zx, m.Zy, m.Zz = math.Abs(a.Zx), math.Abs(a.Zy), math.Abs(a.Zz)
	return m
}

// Transpose updates m to be the reflection of matrix a over its diagonal.
// This essentially changes row-major order to column-major order
// or vice-versa.
//    [ Xx Xy Xz ]    [ Xx Yx Zx ]
//    [ Yx Yy Yz ] => [ Xy Yy Zy ]
//    [ Zx Zy Zz ]    [ Xz Yz Zz ]
// The input matrix a is not changed. Matrix m may be used as the input parameter.
// The updated matrix m is returned.
func (m *M3) Transpose(a *M3) *M3 {
	t_Xy, t_Xz, t_Yz := a.Xy, a.Xz, a.Yz
	m.Xx, m.Xy, m.Xz = a.Xx, a.Yx, a.Zx
	m.Yx, m.Yy, m.Yz = t_Xy, a.Yy, a.Zy
	m.Zx, m.Zy, m.Zz = t_Xz, t_Yz, a.Zz
	return m
}

// Add (+) adds matrices a and b storing the results in m.
// Each element of matrix b is added to the corresponding matrix a element.
// It is safe to use the calling matrix m as one or both of the parameters.
// For example the plus.equals operation (+=) is
//     m.Add(m, b)
// The updated matrix m is returned.
func (m *M3) Add(a, b *M3) *M3 {
	m.Xx, m.Xy, m.Xz = a.Xx+b.Xx, a.Xy+b.Xy, a.Xz+b.Xz
	m.Yx, m.Yy, m.Yz = a.Yx+b.Yx, a.Yy+b.Yy, a.Yz+b.Yz
	m.Zx, m.Zy, m.Zz = a.Zx+b.Zx, a.Zy+b.Zy, a.Zz+b.Zz
	return m
}

// Sub (-) subtracts matrices b from a storing the results in m.
// Each element of matrix b is subtracted from the corresponding matrix a element.
// It is safe to use the calling matrix m as one or both of the parameters.
// For example the minus.equals operation (-=) is
//     m.Sub(m, b)
// The updated matrix m is returned.
func (m *M3) Sub(a, b *M3) *M3 {
	m.Xx, m.Xy, m.Xz = a.Xx-b.Xx, a.Xy-b.Xy, a.Xz-b.Xz
	m.Yx, m.Yy, m.Yz = a.Yx-b.Yx, a.Yy-b.Yy, a.Yz-b.Yz
	m.Zx, m.Zy, m.Zz = a.Zx-b.Zx, a.Zy-b.Zy, a.Zz-b.Zz
	return m
}

// Mult (*) multiplies matrices l and r storing the results in m.
//    [ lXx lXy lXz ] [ rXx rXy rXz ]    [ mXx mXy mXz ]
//    [ lYx lYy lYz ]x[ rYx rYy rYz ] => [ mYx mYy mYz ]
//    [ lZx lZy lZz ] [ rZx rZy rZz ]    [ mZx mZy mZz ]
// It is safe to use the calling matrix m as one or both of the parameters.
// For example (*=) is
//     m.Mult(m, r)
// The updated matrix m is returned.
func (m *M3) Mult(l, r *M3) *M3 {
	xx := l.Xx*r.Xx + l.Xy*r.Yx + l.Xz*r.Zx
	xy := l.Xx*r.Xy + l.Xy*r.Yy + l.Xz*r.Zy
	xz := l.Xx*r.Xz + l.Xy*r.Yz + l.Xz*r.Zz
	yx := l.Yx*r.Xx + l.Yy*r.Yx + l.Yz*r.Zx
	yy := l.Yx*r.Xy + l.Yy*r.Yy + l.Yz*r.Zy
	yz := l.Yx*r.Xz + l.Yy*r.Yz + l.Yz*r.Zz
	zx := l.Zx*r.Xx + l.Zy*r.Yx + l.Zz*r.Zx
	zy := l.Zx*r.Xy + l.Zy*r.Yy + l.Zz*r.Zy
	zz := l.Zx*r.Xz + l.Zy*r.Yz + l.Zz*r.Zz
	m.Xx, m.Xy, m.Xz = xx, xy, xz
	m.Yx, m.Yy, m.Yz = yx, yy, yz
	m.Zx, m.Zy, m.Zz = zx, zy, zz
	return m
}

// MultLtR multiplies the transpose of matrix l on left of matrix r
// and stores the result in m. This can be used for saving a method call
// when calculating inverse transforms.
//    [ lXx lYx lZx ] [ rXx rXy rXz ]    [ mXx mXy mXz ]
//    [ lXy lYy lZy ]x[ rYx rYy rYz ] => [ mYx mYy mYz ]
//    [ lXz lYz lZz ] [ rZx rZy rZz ]    [ mZx mZy mZz ]
// It is safe to use the calling matrix m as one or both of the parameters.
// The updated matrix m is returned.
func (m *M3) MultLtR(lt, r *M3) *M3 {
	xx := lt.Xx*r.Xx + lt.Yx*r.Yx + lt.Zx*r.Zx
	xy := lt.Xx*r.Xy + lt.Yx*r.Yy + lt.Zx*r.Zy
	xz := lt.Xx*r.Xz + lt.Yx*r.Yz + lt.Zx*r.Zz
	yx := lt.Xy*r.Xx + lt.Yy*r.Yx + lt.Zy*r.Zx
	yy := lt.Xy*r.Xy + lt.Yy*r.Yy + lt.Zy*r.Zy
	yz := lt.Xy*r.Xz + lt.Yy*r.Yz + lt.Zy*r.Zz
	zx := lt.Xz*r.Xx + lt.Yz*r.Yx + lt.Zz*r.Zx
	zy := lt.Xz*r.Xy + lt.Yz*r.Yy + lt.Zz*r.Zy
	zz := lt.Xz*r.Xz + lt.Yz*r.Yz + lt.Zz*r.Zz
	m.Xx, m.Xy, m.Xz = xx, xy, xz
	m.Yx, m.Yy, m.Yz = yx, yy, yz
	m.Zx, m.Zy, m.Zz = zx, zy, zz
	return m
}

// Scale (*) each element of matrix m by the given scalar.
// The updated matrix m is returned.
func (m *M3) Scale(s float64) *M3 {
	m.Xx, m.Xy, m.Xz = m.Xx*s, m.Xy*s, m.Xz*s
	m.Yx, m.Yy, m.Yz = m.Yx*s, m.Yy*s, m.Yz*s
	m.Zx, m.Zy, m.Zz = m.Zx*s, m.Zy*s, m.Zz*s
	return m
}

// ScaleS (*) scales each column of matrix m using the corresponding scaler
// elements x, y, z. The updated matrix m is returned.
func (m *M3) ScaleS(x, y, z float64) *M3 {
	m.Xx, m.Xy, m.Xz = m.Xx*x, m.Xy*y, m.Xz*z
	m.Yx, m.Yy, m.Yz = m.Yx*x, m.Yy*y, m.Yz*z
	m.Zx, m.Zy, m.Zz = m.Zx*x, m.Zy*y, m.Zz*z
	return m
}

// ScaleV (*) scales each column of matrix m using the given vector v
// for elements for x, y, z. The updated matrix m is returned.
func (m *M3) ScaleV(v *V3) *M3 {
	m.Xx, m.Xy, m.Xz = m.Xx*v.X, m.Xy*v.Y, m.Xz*v.Z
	m.Yx, m.Yy, m.Yz = m.Yx*v.X, m.Yy*v.Y, m.Yz*v.Z
	m.Zx, m.Zy, m.Zz = m.Zx*v.X, m.Zy*v.Y, m.Zz*v.Z
	return m
}

// ScaleSM updates m to be the multiplication of a scale matrix
// created from x, y, z and itself. The updated matrix m is
// returned so that it may be immediately used in another operation.
//    [ x 0 0 ]   [ mXx mXy mXz ]    [ mXx' mXy' mXz' ]
//    [ 0 y 0 ] x [ mYx mYy mYz ] => [ mYx' mYy' mYz' ]
//    [ 0 0 z ]   [ mZx mZy mZz ]    [ mZx' mZy' mZz' ]
// Be sure to pick the correct scale (SM or MS) when doing transforms.
func (m *M3) ScaleSM(x, y, z float64) *M3 {
	m.Xx, m.Xy, m.Xz = m.Xx*x, m.Xy*x, m.Xz*x
	m.Yx, m.Yy, m.Yz = m.Yx*y, m.Yy*y, m.Yz*y
	m.Zx, m.Zy, m.Zz = m.Zx*z, m.Zy*z, m.Zz*z
	return m
}

// SetQ converts a quaternion rotation representation to a matrix
// rotation representation. SetQ updates matrix m to be the rotation
// matrix representing the rotation described by unit-quaternion q.
//                       [ mXx mXy mXz ]
//    [ qx qy qz qw ] => [ mYx mYy mYz ]
//                       [ mZx mZy mZz ]
// The parameter q is unchanged. The updated matrix m is returned.
func (m *M3) SetQ(q *Q) *M3 {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z
	m.Xx, m.Xy, m.Xz = 1-2*(yy+zz), 2*(xy-wz), 2*(xz+wy)
	m.Yx, m.Yy, m.Yz = 2*(xy+wz), 1-2*(xx+zz), 2*(yz-wx)
	m.Zx, m.Zy, m.Zz = 2*(xz-wy), 2*(yz+wx), 1-2*(xx+yy)
	return m
}

// SetSkewSym sets the matrix m to be a skew-symetric matrix based
// on the elements of vector v. Wikipedia states:
//    "A skew-symmetric matrix is a square matrix
//     whose transpose is also its negative."
func (m *M3) SetSkewSym(v *V3) *M3 {
	m.Xx, m.Xy, m.Xz = 0, -v.Z, v.Y
	m.Yx, m.Yy, m.Yz = v.Z, 0, -v.X
	m.Zx, m.Zy, m.Zz = -v.Y, v.X, 0
	return m
}

// Det returns the determinant of matrix m. Determinants are helpful
// when calculating the inverse of transform matrices. Wikipedia states:
//    "The determinant provides important information about [..] a matrix that
//     corresponds to a linear transformation of a vector space [..] the transformation
//     has an inverse operation exactly when the determinant is nonzero."
func (m *M3) Det() float64 {
	return m.Xx*(m.Yy*m.Zz-m.Yz*m.Zy) + m.Xy*(m.Yz*m.Zx-m.Yx*m.Zz) + m.Xz*(m.Yx*m.Zy-m.Yy*m.Zx)
}

// Cof returns one of the possible cofactors of a 3x3 matrix given the
// input minor (the row and column removed from the calculation).
// Wikipedia states:
//      "cofactors [...] are useful for computing both the determinant
//       and inverse of square matrices".
func (m *M3) Cof(row, col int) float64 {
	minor := row*10 + col // minor given by the removed row and column.
	switch minor {
	case 00:
		return m.Yy*m.Zz - m.Yz*m.Zy
	case 01:
		return m.Yz*m.Zx - m.Yx*m.Zz // flip to negate.
	case 02:
		return m.Yx*m.Zy - m.Yy*m.Zx
	case 10:
		return m.Xz*m.Zy - m.Xy*m.Zz // flip to negate.
	case 11:
		return m.Xx*m.Zz - m.Xz*m.Zx
	case 12:
		return m.Xy*m.Zx - m.Xx*m.Zy // flip to negate.
	case 20:
		return m.Xy*m.Yz - m.Xz*m.Yy
	case 21:
		return m.Xz*m.Yx - m.Xx*m.Yz // flip to negate.
	case 22:
		return m.Xx*m.Yy - m.Xy*m.Yx
	}
	log.Printf("matrix M3.Cof developer error %d", minor)
	return 0
}

// Adj updates m to be the adjoint matrix of matrix a. The adjoint matrix is
// created by the transpose of the cofactor matrix of the original matrix.
//     [ a.cof(0,0) a.cof(1,0) a.cof(2,0) ]    [ mXx mXy mXz ]
//     [ a.cof(0,1) a.cof(1,1) a.cof(2,1) ] => [ mYx mYy mYz ]
//     [ a.cof(0,2) a.cof(1,2) a.cof(2,2) ]    [ mZx mZy mZz ]
// The updated matrix m is returned.
func (m *M3) Adj(a *M3) *M3 {
	xx, xy, xz := a.Cof(0, 0), a.Cof(1, 0), a.Cof(2, 0)
	yx, yy, yz := a.Cof(0, 1), a.Cof(1, 1), a.Cof(2, 1)
	zx, zy, zz := a.Cof(0, 2), a.Cof(1, 2), a.Cof(2, 2)
	m.Xx, m.Xy, m.Xz = xx, xy, xz
	m.Yx, m.Yy, m.Yz = yx, yy, yz
	m.Zx, m.Zy, m.Zz = zx, zy, zz
	return m
}

// Inv updates m to be the inverse of matrix a. The updated matrix m is returned.
// Matrix m is not updated if the matrix has no inverse.
func (m *M3) Inv(a *M3) *M3 {
	det := a.Det()
	if det != 0 {
		s := 1 / det
		xx, xy, xz := a.Cof(0, 0)*s, a.Cof(1, 0)*s, a.Cof(2, 0)*s
		yx, yy, yz := a.Cof(0, 1)*s, a.Cof(1, 1)*s, a.Cof(2, 1)*s
		zx, zy, zz := a.Cof(0, 2)*s, a.Cof(1, 2)*s, a.Cof(2, 2)*s
		m.Xx, m.Xy, m.Xz = xx, xy, xz
		m.Yx, m.Yy, m.Yz = yx, yy, yz
		m.Zx, m.Zy, m.Zz = zx, zy, zz
	}
	return m
}

// SetAa, set axis-angle, updates m to be a rotation matrix from the
// given axis (ax, ay, az) and angle (in radians). See:
//    http://en.wikipedia.org/wiki/Rotation_matrix#Rotation_matrix_from_axis_and_angle
//    http://web.archive.org/web/20041029003853/...
//    ...http://www.j3d.org/matrix_faq/matrfaq_latest.html#Q38 (*note column order)
// The updated matrix m is returned.
func (m *M3) SetAa(ax, ay, az, ang float64) *M3 {
	alenSqr := ax*ax + ay*ay + az*az
	if alenSqr == 0 {
		log.Printf("matrix.M3.SetAa Zero length axis.")
		return m
	}

	// ensure normalized unit vector.
	ilen := 1 / math.Sqrt(alenSqr)
	ax, ay, az = ax*ilen, ay*ilen, az*ilen

	// now set the rotation.
	rcos, rsin := math.Cos(ang), math.Sin(ang)
	m.Xx = rcos + ax*ax*(1-rcos)
	m.Xy = -az*rsin + ay*ax*(1-rcos)
	m.Xz = ay*rsin + az*ax*(1-rcos)
	m.Yx = az*rsin + ax*ay*(1-rcos)
	m.Yy = rcos + ay*ay*(1-rcos)
	m.Yz = -ax*rsin + az*ay*(1-rcos)
	m.Zx = -ay*rsin + ax*az*(1-rcos)
	m.Zy = ax*rsin + ay*az*(1-rcos)
	m.Zz = rcos + az*az*(1-rcos)
	return m
}

// methods above do not allocate memory.
// ============================================================================
// convenience functions for allocating matrices. Nothing else should allocate.

// NewM3 creates a new, all zero, 3x3 matrix.
func NewM3() *M3 { return &M3{} }

// NewM3I creates a new 3x3 identity matrix.
//    [ 1 0 0 ]    [ Xx Xy Xz ]
//    [ 0 1 0 ] => [ Yx Yy Yz ]
//    [ 0 0 1 ]    [ Zx Zy Zz ]
func NewM3I() *M3 { return &M3{Xx: 1, Yy: 1, Zz: 1} }
