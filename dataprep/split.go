package dataprep

import (
	"errors"
	"sort"

	"math/rand/v2"
)

var (
	ErrInvalidFraction = errors.New("train fraction must be in (0, 1)")
	ErrDegenerateSplit = errors.New("split leaves an empty train or test set")
)

// Split partitions row indices into a training set of ⌊n*trainFraction⌋ rows
// drawn without replacement and the complementary test set. The same seed
// always yields the same partition. No stratification is applied.
func Split(numRows int, trainFraction float64, seed uint64) (train, test []int, err error) {
	if trainFraction <= 0.0 || trainFraction >= 1.0 {
		return nil, nil, ErrInvalidFraction
	}

	numTrain := int(float64(numRows) * trainFraction)
	if numTrain == 0 || numTrain == numRows {
		return nil, nil, ErrDegenerateSplit
	}

	rnd := rand.New(rand.NewPCG(seed, 0))
	perm := rnd.Perm(numRows)

	train = append([]int(nil), perm[:numTrain]...)
	test = append([]int(nil), perm[numTrain:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}
