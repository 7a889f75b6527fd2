package maplayers

import "math"

// Mat4 is a 4x4 matrix in column-major order: element (row r, column c) is
// stored at index c*4 + r, so a point transforms as
//
//	out.x = m[0]*x + m[4]*y + m[8]*z + m[12]*w
type Mat4 [16]float64

// mat4Identity is the identity matrix.
var mat4Identity = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// mat4Perspective builds a perspective projection matrix from a vertical
// field of view in radians, an aspect ratio, and near/far plane distances.
func mat4Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovY/2.0)
	nf := 1.0 / (near - far)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * nf
	m[11] = -1
	m[14] = 2 * far * near * nf
	return m
}

// mul returns a * b.
func (a Mat4) mul(b Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		b0 := b[c*4+0]
		b1 := b[c*4+1]
		b2 := b[c*4+2]
		b3 := b[c*4+3]
		out[c*4+0] = a[0]*b0 + a[4]*b1 + a[8]*b2 + a[12]*b3
		out[c*4+1] = a[1]*b0 + a[5]*b1 + a[9]*b2 + a[13]*b3
		out[c*4+2] = a[2]*b0 + a[6]*b1 + a[10]*b2 + a[14]*b3
		out[c*4+3] = a[3]*b0 + a[7]*b1 + a[11]*b2 + a[15]*b3
	}
	return out
}

// translate returns m * T(x, y, z).
func (m Mat4) translate(x, y, z float64) Mat4 {
	out := m
	out[12] = m[0]*x + m[4]*y + m[8]*z + m[12]
	out[13] = m[1]*x + m[5]*y + m[9]*z + m[13]
	out[14] = m[2]*x + m[6]*y + m[10]*z + m[14]
	out[15] = m[3]*x + m[7]*y + m[11]*z + m[15]
	return out
}

// scale returns m * S(x, y, z).
func (m Mat4) scale(x, y, z float64) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		out[r] = m[r] * x
		out[4+r] = m[4+r] * y
		out[8+r] = m[8+r] * z
		out[12+r] = m[12+r]
	}
	return out
}

// rotateX returns m rotated by rad around the X axis.
func (m Mat4) rotateX(rad float64) Mat4 {
	s, c := math.Sincos(rad)
	out := m
	for r := 0; r < 4; r++ {
		a1 := m[4+r]
		a2 := m[8+r]
		out[4+r] = a1*c + a2*s
		out[8+r] = a2*c - a1*s
	}
	return out
}

// rotateZ returns m rotated by rad around the Z axis.
func (m Mat4) rotateZ(rad float64) Mat4 {
	s, c := math.Sincos(rad)
	out := m
	for r := 0; r < 4; r++ {
		a0 := m[r]
		a1 := m[4+r]
		out[r] = a0*c + a1*s
		out[4+r] = a1*c - a0*s
	}
	return out
}

// transform applies the matrix to the homogeneous point (x, y, z, w).
func (m Mat4) transform(x, y, z, w float64) (outX, outY, outZ, outW float64) {
	outX = m[0]*x + m[4]*y + m[8]*z + m[12]*w
	outY = m[1]*x + m[5]*y + m[9]*z + m[13]*w
	outZ = m[2]*x + m[6]*y + m[10]*z + m[14]*w
	outW = m[3]*x + m[7]*y + m[11]*z + m[15]*w
	return
}

// invert computes the inverse of m. Returns ok=false when the matrix is
// singular (determinant ≈ 0).
func (m Mat4) invert() (Mat4, bool) {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if det > -1e-300 && det < 1e-300 || !isFinite(det) {
		return mat4Identity, false
	}
	invDet := 1.0 / det

	return Mat4{
		(a11*b11 - a12*b10 + a13*b09) * invDet,
		(a02*b10 - a01*b11 - a03*b09) * invDet,
		(a31*b05 - a32*b04 + a33*b03) * invDet,
		(a22*b04 - a21*b05 - a23*b03) * invDet,
		(a12*b08 - a10*b11 - a13*b07) * invDet,
		(a00*b11 - a02*b08 + a03*b07) * invDet,
		(a32*b02 - a30*b05 - a33*b01) * invDet,
		(a20*b05 - a22*b02 + a23*b01) * invDet,
		(a10*b10 - a11*b08 + a13*b06) * invDet,
		(a01*b08 - a00*b10 - a03*b06) * invDet,
		(a30*b04 - a31*b02 + a33*b00) * invDet,
		(a21*b02 - a20*b04 - a23*b00) * invDet,
		(a11*b07 - a10*b09 - a12*b06) * invDet,
		(a00*b09 - a01*b07 + a02*b06) * invDet,
		(a31*b01 - a30*b03 - a32*b00) * invDet,
		(a20*b03 - a21*b01 + a22*b00) * invDet,
	}, true
}
