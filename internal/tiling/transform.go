package tiling

import (
	"fmt"
	"math"
	"strings"
)

// Transform is an output rotation/reflection.
type Transform string

const (
	TransformNormal     Transform = "normal"
	Transform90         Transform = "90"
	Transform180        Transform = "180"
	Transform270        Transform = "270"
	TransformFlipped    Transform = "flipped"
	TransformFlipped90  Transform = "flipped-90"
	TransformFlipped180 Transform = "flipped-180"
	TransformFlipped270 Transform = "flipped-270"
)

func ParseTransform(s string) (Transform, error) {
	t := Transform(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TransformNormal, nil
	}
	switch t {
	case TransformNormal, Transform90, Transform180, Transform270,
		TransformFlipped, TransformFlipped90, TransformFlipped180, TransformFlipped270:
		return t, nil
	}
	return "", fmt.Errorf("unknown transform %q", s)
}

// Rotated reports whether the transform swaps width and height.
func (t Transform) Rotated() bool {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return true
	}
	return false
}

// LogicalSize converts an output's pixel mode into layout coordinates for
// the given scale and transform.
func LogicalSize(pixelWidth, pixelHeight int, scale float64, t Transform) (int, int) {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Round(float64(pixelWidth) / scale))
	h := int(math.Round(float64(pixelHeight) / scale))
	if t.Rotated() {
		w, h = h, w
	}
	return w, h
}
