package forest

import "sort"

// Node is one decision node of a regression tree. Leaves carry the mean
// target of their training samples.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// Tree is a single CART regression tree.
type Tree struct {
	Root *Node `json:"root"`
}

// Predict walks the tree for one feature vector.
func (t *Tree) Predict(x []float64) float64 {
	node := t.Root
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

type treeBuilder struct {
	params      Params
	features    [][]float64 // row-major sample vectors
	targets     []float64
	total       int       // samples at the root, for importance weighting
	importances []float64 // summed impurity decrease per feature
}

// sse returns the sum of squared errors around the mean for the samples at
// the given indices.
func sse(targets []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, i := range indices {
		sum += targets[i]
		sumSq += targets[i] * targets[i]
	}
	n := float64(len(indices))
	return sumSq - sum*sum/n
}

func mean(targets []float64, indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += targets[i]
	}
	return sum / float64(len(indices))
}

type split struct {
	feature   int
	threshold float64
	left      []int
	right     []int
	decrease  float64
}

// bestSplit scans every feature for the split minimizing the combined child
// SSE, honoring the minimum-samples-per-leaf constraint. Returns nil when no
// admissible split improves on the node impurity.
func (b *treeBuilder) bestSplit(indices []int) *split {
	parentSSE := sse(b.targets, indices)
	if parentSSE <= 0 {
		return nil
	}

	n := len(indices)
	featureCount := len(b.features[0])
	var best *split

	order := make([]int, n)
	for feature := 0; feature < featureCount; feature++ {
		copy(order, indices)
		sort.SliceStable(order, func(i, j int) bool {
			return b.features[order[i]][feature] < b.features[order[j]][feature]
		})

		var leftSum, leftSumSq float64
		totalSum, totalSumSq := 0.0, 0.0
		for _, i := range order {
			totalSum += b.targets[i]
			totalSumSq += b.targets[i] * b.targets[i]
		}

		for pos := 1; pos < n; pos++ {
			i := order[pos-1]
			leftSum += b.targets[i]
			leftSumSq += b.targets[i] * b.targets[i]

			prev := b.features[order[pos-1]][feature]
			curr := b.features[order[pos]][feature]
			if prev == curr {
				continue
			}
			if pos < b.params.MinSamplesLeaf || n-pos < b.params.MinSamplesLeaf {
				continue
			}

			nl, nr := float64(pos), float64(n-pos)
			rightSum := totalSum - leftSum
			rightSumSq := totalSumSq - leftSumSq
			childSSE := (leftSumSq - leftSum*leftSum/nl) + (rightSumSq - rightSum*rightSum/nr)

			decrease := parentSSE - childSSE
			if best == nil || decrease > best.decrease {
				// order is reused across features; copy the winning split.
				best = &split{
					feature:   feature,
					threshold: (prev + curr) / 2,
					decrease:  decrease,
					left:      append([]int(nil), order[:pos]...),
					right:     append([]int(nil), order[pos:]...),
				}
			}
		}
	}

	if best == nil || best.decrease <= 0 {
		return nil
	}
	return best
}

func (b *treeBuilder) build(indices []int, depth int) *Node {
	if len(indices) < b.params.MinSamplesSplit ||
		(b.params.MaxDepth > 0 && depth >= b.params.MaxDepth) {
		return &Node{Leaf: true, Value: mean(b.targets, indices)}
	}

	s := b.bestSplit(indices)
	if s == nil {
		return &Node{Leaf: true, Value: mean(b.targets, indices)}
	}

	// Importance: impurity decrease weighted by the node's sample share.
	b.importances[s.feature] += s.decrease * float64(len(indices)) / float64(b.total)

	return &Node{
		Feature:   s.feature,
		Threshold: s.threshold,
		Left:      b.build(s.left, depth+1),
		Right:     b.build(s.right, depth+1),
	}
}
