package classifier

import "github.com/Luisrodriguezm11/identificador-plantas/internal/common"

// MinValidConfidence is the confidence below which an image is not treated
// as a recognizable leaf.
const MinValidConfidence = 0.30

// IsDisease reports whether p names an actual disease or pest.
func IsDisease(p Prediction) bool {
	return p.Label != common.NothingDetectedLabel && p.Label != common.HealthyLeafLabel
}

// Choose picks the result to report for a leaf photographed on one or both
// sides. A diseased back wins, then a diseased front, then the more
// confident of the two.
func Choose(front Prediction, back *Prediction) Prediction {
	if back == nil {
		return front
	}
	switch {
	case IsDisease(*back):
		return *back
	case IsDisease(front):
		return front
	case front.Confidence >= back.Confidence:
		return front
	default:
		return *back
	}
}

// Assess returns the label to show for p and whether the image looked like a leaf.
func Assess(p Prediction) (label string, validLeaf bool) {
	if p.Label == common.NothingDetectedLabel || p.Confidence < MinValidConfidence {
		return common.UnrecognizedImageLabel, false
	}
	return p.Label, true
}
