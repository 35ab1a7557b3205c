package models

import (
	"math"
	"math/rand/v2"
	"sort"
)

// treeConfig carries the per-tree growth limits shared by every tree in a forest.
type treeConfig struct {
	maxDepth        int // 0 means no depth limit
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // number of candidate features per split, 0 means all
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	isLeaf bool
	value  float64
	n      int
}

// regressionTree is a CART style regression tree minimizing the sum of squared
// errors at each split. Splits are searched over a random candidate feature
// subset when maxFeatures is set.
type regressionTree struct {
	cfg  treeConfig
	root *treeNode

	// impurity reduction accumulated per feature over all accepted splits
	importance []float64
}

type splitCandidate struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

func (t *regressionTree) fit(x [][]float64, y []float64, idx []int, numFeatures int, rnd *rand.Rand) {
	t.importance = make([]float64, numFeatures)
	t.root = t.buildNode(x, y, idx, 0, numFeatures, rnd)
}

func (t *regressionTree) buildNode(x [][]float64, y []float64, idx []int, depth, numFeatures int, rnd *rand.Rand) *treeNode {
	node := &treeNode{n: len(idx)}

	mean, sse := meanSSE(y, idx)
	if len(idx) < t.cfg.minSamplesSplit || sse == 0.0 {
		node.isLeaf = true
		node.value = mean
		return node
	}
	if t.cfg.maxDepth > 0 && depth >= t.cfg.maxDepth {
		node.isLeaf = true
		node.value = mean
		return node
	}

	best := t.findBestSplit(x, y, idx, sse, numFeatures, rnd)
	if best.feature < 0 {
		node.isLeaf = true
		node.value = mean
		return node
	}

	t.importance[best.feature] += best.gain

	node.feature = best.feature
	node.threshold = best.threshold
	node.left = t.buildNode(x, y, best.leftIdx, depth+1, numFeatures, rnd)
	node.right = t.buildNode(x, y, best.rightIdx, depth+1, numFeatures, rnd)
	return node
}

func (t *regressionTree) findBestSplit(x [][]float64, y []float64, idx []int, parentSSE float64, numFeatures int, rnd *rand.Rand) splitCandidate {
	best := splitCandidate{feature: -1}

	features := make([]int, numFeatures)
	for j := range features {
		features[j] = j
	}
	if t.cfg.maxFeatures > 0 && t.cfg.maxFeatures < numFeatures {
		rnd.Shuffle(numFeatures, func(i, j int) {
			features[i], features[j] = features[j], features[i]
		})
		features = features[:t.cfg.maxFeatures]
	}

	sorted := make([]int, len(idx))
	for _, f := range features {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		// prefix scan of target sums to evaluate every threshold in one pass
		var leftSum, leftSumSq float64
		totalSum, totalSumSq := sums(y, sorted)
		for s := 1; s < len(sorted); s++ {
			yv := y[sorted[s-1]]
			leftSum += yv
			leftSumSq += yv * yv

			if x[sorted[s]][f] == x[sorted[s-1]][f] {
				continue
			}
			if s < t.cfg.minSamplesLeaf || len(sorted)-s < t.cfg.minSamplesLeaf {
				continue
			}

			leftSSE := leftSumSq - leftSum*leftSum/float64(s)
			rightN := float64(len(sorted) - s)
			rightSum := totalSum - leftSum
			rightSSE := (totalSumSq - leftSumSq) - rightSum*rightSum/rightN

			gain := parentSSE - leftSSE - rightSSE
			if gain > best.gain {
				left := make([]int, s)
				right := make([]int, len(sorted)-s)
				copy(left, sorted[:s])
				copy(right, sorted[s:])
				best = splitCandidate{
					gain:      gain,
					feature:   f,
					threshold: (x[sorted[s-1]][f] + x[sorted[s]][f]) / 2.0,
					leftIdx:   left,
					rightIdx:  right,
				}
			}
		}
	}
	return best
}

func (t *regressionTree) predictRow(row []float64) float64 {
	node := t.root
	for !node.isLeaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func meanSSE(y []float64, idx []int) (float64, float64) {
	if len(idx) == 0 {
		return 0.0, 0.0
	}
	sum, sumSq := sums(y, idx)
	n := float64(len(idx))
	mean := sum / n
	sse := sumSq - sum*sum/n
	// numerical noise can push the subtraction slightly negative
	return mean, math.Max(sse, 0.0)
}

func sums(y []float64, idx []int) (float64, float64) {
	var sum, sumSq float64
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	return sum, sumSq
}
