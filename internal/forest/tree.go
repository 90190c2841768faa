package forest

import (
	"math"
	"math/rand/v2"
	"slices"
)

// node is one entry of a flattened CART tree. Leaves carry the class they
// vote for; internal nodes send x[feature] <= threshold left.
type node struct {
	threshold float64
	feature   int
	left      int
	right     int
	class     int
	leaf      bool
}

type tree struct {
	nodes []node
}

func (t *tree) predict(x []float64) int {
	i := 0
	for {
		n := &t.nodes[i]
		if n.leaf {
			return n.class
		}
		var v float64
		if n.feature < len(x) {
			v = x[n.feature]
		}
		if v <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// treeBuilder grows one tree on a bootstrap sample. It is not safe for
// concurrent use; each worker gets its own.
type treeBuilder struct {
	x          [][]float64
	y          []int
	rng        *rand.Rand
	features   []int
	order      []int
	leftCount  []int
	rightCount []int
	tree       *tree
	numClasses int
	maxFeat    int
	maxDepth   int
	minSplit   int
}

func newTreeBuilder(x [][]float64, y []int, numClasses int, opts Options, rng *rand.Rand) *treeBuilder {
	dims := 0
	if len(x) > 0 {
		dims = len(x[0])
	}

	features := make([]int, dims)
	for i := range features {
		features[i] = i
	}

	maxFeat := int(math.Sqrt(float64(dims)))
	if maxFeat < 1 {
		maxFeat = 1
	}

	return &treeBuilder{
		x:          x,
		y:          y,
		rng:        rng,
		features:   features,
		leftCount:  make([]int, numClasses),
		rightCount: make([]int, numClasses),
		numClasses: numClasses,
		maxFeat:    maxFeat,
		maxDepth:   opts.MaxDepth,
		minSplit:   opts.MinSamplesSplit,
	}
}

func (b *treeBuilder) build() *tree {
	n := len(b.x)
	sample := make([]int, n)
	for i := range sample {
		sample[i] = b.rng.IntN(n)
	}

	b.tree = &tree{}
	b.grow(sample, 0)
	return b.tree
}

// grow appends the subtree for samples and returns its node index.
func (b *treeBuilder) grow(samples []int, depth int) int {
	idx := len(b.tree.nodes)
	b.tree.nodes = append(b.tree.nodes, node{})

	counts := make([]int, b.numClasses)
	for _, s := range samples {
		counts[b.y[s]]++
	}
	majority := argmax(counts)

	if counts[majority] == len(samples) ||
		len(samples) < b.minSplit ||
		(b.maxDepth > 0 && depth >= b.maxDepth) {
		b.tree.nodes[idx] = node{leaf: true, class: majority}
		return idx
	}

	feature, threshold, ok := b.bestSplit(samples, counts)
	if !ok {
		b.tree.nodes[idx] = node{leaf: true, class: majority}
		return idx
	}

	var left, right []int
	for _, s := range samples {
		if b.x[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		b.tree.nodes[idx] = node{leaf: true, class: majority}
		return idx
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.tree.nodes[idx] = node{feature: feature, threshold: threshold, left: l, right: r}
	return idx
}

// bestSplit searches random features for the split with the lowest weighted
// Gini impurity. Features that are constant within the node do not count
// towards the maxFeat budget, so sparse TF-IDF columns cannot starve a node
// of candidates.
func (b *treeBuilder) bestSplit(samples []int, counts []int) (int, float64, bool) {
	var (
		bestFeature   = -1
		bestThreshold float64
		bestScore     = math.Inf(-1)
	)

	if cap(b.order) < len(samples) {
		b.order = make([]int, len(samples))
	}
	order := b.order[:len(samples)]

	visited := 0
	for k := 0; k < len(b.features) && visited < b.maxFeat; k++ {
		j := k + b.rng.IntN(len(b.features)-k)
		b.features[k], b.features[j] = b.features[j], b.features[k]
		f := b.features[k]

		copy(order, samples)
		slices.SortFunc(order, func(a, c int) int {
			va, vc := b.x[a][f], b.x[c][f]
			switch {
			case va < vc:
				return -1
			case va > vc:
				return 1
			default:
				return 0
			}
		})

		first, last := b.x[order[0]][f], b.x[order[len(order)-1]][f]
		if first == last {
			continue
		}
		visited++

		score, threshold := b.sweep(order, f, counts)
		if score > bestScore {
			bestScore = score
			bestFeature = f
			bestThreshold = threshold
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// sweep walks the samples sorted by feature f and returns the best split
// score and its threshold. The score is sum(left^2)/nL + sum(right^2)/nR,
// which grows as the weighted Gini impurity shrinks.
func (b *treeBuilder) sweep(order []int, f int, counts []int) (float64, float64) {
	for c := range b.leftCount {
		b.leftCount[c] = 0
		b.rightCount[c] = counts[c]
	}

	var sumLeft, sumRight float64
	for _, c := range counts {
		sumRight += float64(c * c)
	}

	best := math.Inf(-1)
	var threshold float64
	n := len(order)

	for i := 0; i < n-1; i++ {
		c := b.y[order[i]]
		sumLeft += float64(2*b.leftCount[c] + 1)
		sumRight -= float64(2*b.rightCount[c] - 1)
		b.leftCount[c]++
		b.rightCount[c]--

		cur, next := b.x[order[i]][f], b.x[order[i+1]][f]
		if cur == next {
			continue
		}

		nl, nr := float64(i+1), float64(n-i-1)
		score := sumLeft/nl + sumRight/nr
		if score > best {
			best = score
			threshold = cur + (next-cur)/2
			if threshold >= next {
				threshold = cur
			}
		}
	}

	return best, threshold
}

// argmax returns the index of the largest count; ties go to the lowest index.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}
