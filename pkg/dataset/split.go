package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrInvalidRatio indicates a split ratio outside the open interval (0,1).
var ErrInvalidRatio = errors.New("split ratio must be in (0,1)")

// Split randomly partitions f into train and test frames. trainRatio is the
// share of rows assigned to train. The partition is stratification-free;
// every source row lands in exactly one side. When f has at least two rows
// both sides receive at least one; a single row always goes to train.
func Split(f Frame, trainRatio float64, rng *rand.Rand) (train, test Frame, err error) {
	if !(trainRatio > 0 && trainRatio < 1) {
		return Frame{}, Frame{}, fmt.Errorf("%w: %v", ErrInvalidRatio, trainRatio)
	}

	n := f.Len()
	nTest := int(math.Round(float64(n) * (1 - trainRatio)))
	switch {
	case n >= 2:
		nTest = min(max(nTest, 1), n-1)
	case n == 1:
		nTest = 0
	}

	perm := rng.Perm(n)
	return f.Take(perm[nTest:]), f.Take(perm[:nTest]), nil
}
