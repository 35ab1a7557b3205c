// floatsunrolled is inspired by the SIMD blog post
// https://github.com/camdencheek/simd_blog/blob/main/main.go
package floatsunrolled

import (
	"errors"
	"fmt"
)

const UnrollBatch = 4

var (
	ErrSliceLengthMismatch = errors.New("slices must have equal lengths")
	ErrSliceMul            = fmt.Errorf("slice length must be multiple of %d", UnrollBatch)
)

// SquaredDistance computes the squared euclidean distance between two equal
// length slices whose lengths are a multiple of UnrollBatch. Inputs are
// expected to be padded with zeros via Pad.
func SquaredDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(ErrSliceLengthMismatch)
	}

	if len(a)%UnrollBatch != 0 {
		panic(ErrSliceMul)
	}

	var sum float64
	for i := 0; i < len(a); i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		d0 := aTmp[0] - bTmp[0]
		d1 := aTmp[1] - bTmp[1]
		d2 := aTmp[2] - bTmp[2]
		d3 := aTmp[3] - bTmp[3]
		sum += d0*d0 + d1*d1 + d2*d2 + d3*d3
	}
	return sum
}

// Pad returns a copy of the input extended with zeros so its length is a
// multiple of UnrollBatch.
func Pad(a []float64) []float64 {
	rem := len(a) % UnrollBatch
	padded := make([]float64, len(a), len(a)+(UnrollBatch-rem)%UnrollBatch)
	copy(padded, a)
	if rem != 0 {
		padded = padded[:cap(padded)]
	}
	return padded
}
