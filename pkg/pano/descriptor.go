package pano

import "fmt"

// Lens holds the geometric lens model. A, B and C are the PanoTools
// radial distortion coefficients (the fourth, d, is implied as 1-a-b-c),
// expressed in units of half the shorter image side. ShiftX/ShiftY move
// the optical centre, in pixels. ShearX/ShearY model scanner shear.
type Lens struct {
	A, B, C        float64
	ShiftX, ShiftY float64
	ShearX, ShearY float64
}

// Vignetting is the radial falloff v(r) = 1 + B r^2 + C r^4 + D r^6, with
// r normalised to half the image diagonal.
type Vignetting struct {
	B, C, D float64
}

func (v Vignetting) IsZero() bool { return v.B == 0 && v.C == 0 && v.D == 0 }

// Pose is the orientation of the camera, in degrees.
type Pose struct {
	Yaw, Pitch, Roll float64
}

// An ImageDescriptor is everything about a source image except its
// pixels. It is treated as immutable once built.
type ImageDescriptor struct {
	Name       string
	Width      int
	Height     int
	Projection Projection
	HFOV       float64 // horizontal field of view, degrees

	Pose
	Lens          Lens
	Vignetting    Vignetting
	ExposureValue float64
}

func (d ImageDescriptor) String() string {
	return fmt.Sprintf("%s: %dx%d %s hfov=%.1f y/p/r=(%.2f,%.2f,%.2f) ev=%.2f",
		d.Name, d.Width, d.Height, d.Projection, d.HFOV, d.Yaw, d.Pitch, d.Roll, d.ExposureValue)
}

// Validate checks the descriptor can be turned into a coordinate transform.
func (d ImageDescriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("image %q has size %dx%d: %w", d.Name, d.Width, d.Height, ErrUnsupported)
	}
	if !d.Projection.Valid() {
		return fmt.Errorf("image %q: %v: %w", d.Name, d.Projection, ErrUnsupported)
	}
	if d.HFOV <= 0 || d.HFOV > d.Projection.MaxHFOV() {
		return fmt.Errorf("image %q: hfov %.1f for %s: %w", d.Name, d.HFOV, d.Projection, ErrUnsupported)
	}
	return nil
}
