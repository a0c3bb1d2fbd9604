package exa

import "testing"

func linear(a, b, c, d Fixed) *Transform {
	return &Transform{
		{a, b, 0},
		{c, d, 0},
		{0, 0, FixedOne},
	}
}

func TestClassifyTransform(t *testing.T) {
	one := FixedOne
	tests := []struct {
		name string
		m    *Transform
		want Transformation
	}{
		{"nil", nil, TransformNone},
		{"identity", IdentityTransform(), TransformNone},
		{"translated identity", &Transform{{one, 0, 5 * one}, {0, one, -3 * one}, {0, 0, one}}, TransformNone},
		{"rotate 90", linear(0, -one, one, 0), TransformRotate90},
		{"rotate 180", linear(-one, 0, 0, -one), TransformRotate180},
		{"scaled rotate 180", linear(-2*one, 0, 0, -2*one), TransformRotate180},
		{"anisotropic mirror", linear(-2*one, 0, 0, -one), TransformUnknown},
		{"anisotropic rotate 90", linear(0, -2*one, one, 0), TransformUnknown},
		{"rotate 270", linear(0, one, -one, 0), TransformRotate270},
		{"scaled rotate 90", linear(0, -2*one, 2*one, 0), TransformRotate90},
		{"upscale", linear(2*one, 0, 0, 2*one), TransformScale},
		{"anisotropic scale", linear(one/2, 0, 0, 3*one), TransformScale},
		{"mirror x", linear(-one, 0, 0, one), TransformUnknown},
		{"shear", linear(one, one/4, 0, one), TransformUnknown},
		{"arbitrary rotation", linear(46341, -46341, 46341, 46341), TransformUnknown},
		{"projective", &Transform{{one, 0, 0}, {0, one, 0}, {1, 0, one}}, TransformUnknown},
		{"zero", &Transform{}, TransformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTransform(tt.m); got != tt.want {
				t.Errorf("ClassifyTransform() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformOffset(t *testing.T) {
	one := FixedOne
	tests := []struct {
		name   string
		m      *Transform
		dx, dy int
		ok     bool
	}{
		{"nil", nil, 0, 0, true},
		{"identity", IdentityTransform(), 0, 0, true},
		{"whole pixels", &Transform{{one, 0, 5 * one}, {0, one, -3 * one}, {0, 0, one}}, 5, -3, true},
		{"half pixel", &Transform{{one, 0, one / 2}, {0, one, 0}, {0, 0, one}}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx, dy, ok := tt.m.offset()
			if dx != tt.dx || dy != tt.dy || ok != tt.ok {
				t.Errorf("offset() = %d, %d, %v, want %d, %d, %v", dx, dy, ok, tt.dx, tt.dy, tt.ok)
			}
		})
	}
}
