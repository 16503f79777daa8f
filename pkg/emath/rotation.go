package emath

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// View directions use x to the right, y downwards and z straight ahead.

func rotX(deg float64) *mat.Dense {
	s, c := math.Sincos(deg * math.Pi / 180.0)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

func rotY(deg float64) *mat.Dense {
	s, c := math.Sincos(deg * math.Pi / 180.0)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

func rotZ(deg float64) *mat.Dense {
	s, c := math.Sincos(deg * math.Pi / 180.0)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// CameraToWorld returns the rotation taking a direction seen by a camera
// posed at (yaw, pitch, roll) into panorama space. Positive yaw turns the
// camera right, positive pitch turns it up. Angles are in degrees.
func CameraToWorld(yawDeg, pitchDeg, rollDeg float64) Mat3 {
	var yp, ypr mat.Dense
	yp.Mul(rotY(yawDeg), rotX(pitchDeg))
	ypr.Mul(&yp, rotZ(rollDeg))
	return denseToMat3(&ypr)
}

// WorldToCamera is the inverse of CameraToWorld.
func WorldToCamera(yawDeg, pitchDeg, rollDeg float64) Mat3 {
	return CameraToWorld(yawDeg, pitchDeg, rollDeg).Transpose()
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

func denseToMat3(d mat.Matrix) Mat3 {
	m := Mat3{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[3*r+c] = d.At(r, c)
		}
	}
	return m
}
