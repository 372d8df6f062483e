// Package ivltree implements the augmented balanced interval tree used
// by the sweep-line extractor's per-basic-layer active sets.
//
// Grounded on other_examples/biogo-store__interval.go's augmented
// left-leaning red-black tree — the same "cache the max high seen in the
// subtree, re-derive it on every rotation" discipline — reimplemented as
// a treap so that rebalancing follows a fixed, deterministically-seeded
// priority per element id instead of red/black color-flip bookkeeping.
// Node ordering additionally follows
// other_examples/JohannesEbke-go-stree__stree.go's stabbing-query pruning
// rule (skip a child subtree whose cached max cannot reach the query).
package ivltree

import (
	"vlsix/pkg/geometry"
)

// Element is anything the tree can index: a stored interval plus a
// unique id used to break ties between elements with equal low
// coordinates (spec §4.1: "ties broken by payload id to produce
// reproducible equipotentials").
type Element interface {
	Interval() geometry.Interval
	ElementID() uint64
}

type node struct {
	elem     Element
	priority uint64
	max      geometry.DbU
	hasMax   bool
	left     *node
	right    *node
}

// Tree is an augmented interval tree keyed on (Low, ID).
type Tree struct {
	root  *node
	count int
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{}
}

// Len returns the number of stored elements.
func (t *Tree) Len() int { return t.count }

// splitmix64 deterministically derives a balancing priority from an
// element id so that tree shape depends only on the set of ids inserted,
// never on wall-clock time or process-specific randomness (spec §8
// property 1: determinism given identical inputs).
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func less(a, b Element) bool {
	ai, bi := a.Interval(), b.Interval()
	if ai.Low != bi.Low {
		return ai.Low < bi.Low
	}
	return a.ElementID() < b.ElementID()
}

func sameKey(a, b Element) bool {
	ai, bi := a.Interval(), b.Interval()
	return ai.Low == bi.Low && a.ElementID() == b.ElementID()
}

func nodeMax(n *node) (geometry.DbU, bool) {
	if n == nil {
		return 0, false
	}
	return n.max, n.hasMax
}

func updateAug(n *node) {
	if n == nil {
		return
	}
	m := n.elem.Interval().High
	if lm, ok := nodeMax(n.left); ok && lm > m {
		m = lm
	}
	if rm, ok := nodeMax(n.right); ok && rm > m {
		m = rm
	}
	n.max = m
	n.hasMax = true
}

func rotateRight(n *node) *node {
	l := n.left
	n.left = l.right
	l.right = n
	updateAug(n)
	updateAug(l)
	return l
}

func rotateLeft(n *node) *node {
	r := n.right
	n.right = r.left
	r.left = n
	updateAug(n)
	updateAug(r)
	return r
}

// Insert stores elem in the tree. Panics if elem's interval is empty:
// an empty interval can never participate in an overlap query, so
// inserting one is always a caller bug (spec §4.1's public contract only
// describes inserting real intervals).
func (t *Tree) Insert(elem Element) {
	if elem.Interval().IsEmpty() {
		panic("ivltree: cannot insert an empty interval")
	}
	n := &node{elem: elem, priority: splitmix64(elem.ElementID())}
	t.root = insert(t.root, n)
	t.count++
}

func insert(root, n *node) *node {
	if root == nil {
		updateAug(n)
		return n
	}
	if less(n.elem, root.elem) {
		root.left = insert(root.left, n)
		if root.left.priority > root.priority {
			root = rotateRight(root)
		}
	} else {
		root.right = insert(root.right, n)
		if root.right.priority > root.priority {
			root = rotateLeft(root)
		}
	}
	updateAug(root)
	return root
}

// Remove deletes the element with the given interval and id. Returns
// false if no such element was present.
func (t *Tree) Remove(iv geometry.Interval, id uint64) bool {
	removed := false
	t.root = remove(t.root, iv, id, &removed)
	if removed {
		t.count--
	}
	return removed
}

type keyElem struct {
	iv geometry.Interval
	id uint64
}

func (k keyElem) Interval() geometry.Interval { return k.iv }
func (k keyElem) ElementID() uint64           { return k.id }

func remove(root *node, iv geometry.Interval, id uint64, removed *bool) *node {
	if root == nil {
		return nil
	}
	target := keyElem{iv: iv, id: id}
	switch {
	case less(target, root.elem):
		root.left = remove(root.left, iv, id, removed)
	case less(root.elem, target):
		root.right = remove(root.right, iv, id, removed)
	default:
		if sameKey(root.elem, target) {
			*removed = true
			root = mergeChildren(root.left, root.right)
			updateAug(root)
			return root
		}
		// Same (Low,ID) key collision but different underlying interval
		// (High differs) should never happen since ElementID is unique;
		// fall through by searching both sides defensively.
		if root.left != nil {
			root.left = remove(root.left, iv, id, removed)
		}
		if !*removed && root.right != nil {
			root.right = remove(root.right, iv, id, removed)
		}
	}
	updateAug(root)
	return root
}

func mergeChildren(l, r *node) *node {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.priority > r.priority {
		l.right = mergeChildren(l.right, r)
		updateAug(l)
		return l
	}
	r.left = mergeChildren(l, r.left)
	updateAug(r)
	return r
}

// Overlap invokes visit, in ascending (Low, ID) order, on every stored
// element whose interval overlaps q (spec §4.1: closed-interval
// intersection semantics honouring OpenLow/OpenHigh; spec §5: "Interval
// tree overlap reports elements in ascending-low order").
func (t *Tree) Overlap(q geometry.Interval, visit func(Element)) {
	overlap(t.root, q, visit)
}

func overlap(n *node, q geometry.Interval, visit func(Element)) {
	if n == nil || q.IsEmpty() {
		return
	}
	if n.left != nil && n.left.hasMax && n.left.max >= q.Low {
		overlap(n.left, q, visit)
	}
	if q.Overlap(n.elem.Interval()) {
		visit(n.elem)
	}
	if n.elem.Interval().Low <= q.High {
		if n.right != nil && n.right.hasMax && n.right.max >= q.Low {
			overlap(n.right, q, visit)
		}
	}
}

// OverlapSlice is a convenience wrapper returning the matches as a slice.
func (t *Tree) OverlapSlice(q geometry.Interval) []Element {
	var out []Element
	t.Overlap(q, func(e Element) { out = append(out, e) })
	return out
}

// Stab returns every element whose interval contains x.
func (t *Tree) Stab(x geometry.DbU) []Element {
	return t.OverlapSlice(geometry.NewInterval(x, x))
}

// InOrder visits every stored element in ascending (Low, ID) order,
// independent of any query — used by tests to verify tree-shape
// invariants after a sequence of inserts/removes (spec §8: "in-order
// traversal of keys and max annotations").
func (t *Tree) InOrder(visit func(Element)) {
	inOrder(t.root, visit)
}

func inOrder(n *node, visit func(Element)) {
	if n == nil {
		return
	}
	inOrder(n.left, visit)
	visit(n.elem)
	inOrder(n.right, visit)
}

// CheckAugmentation verifies, for every node, that max equals the true
// maximum high value across its subtree — used by tests to catch a
// rebalance that forgot to re-derive the augmentation.
func (t *Tree) CheckAugmentation() bool {
	ok := true
	var walk func(*node) (geometry.DbU, bool)
	walk = func(n *node) (geometry.DbU, bool) {
		if n == nil {
			return 0, false
		}
		m := n.elem.Interval().High
		if lm, has := walk(n.left); has && lm > m {
			m = lm
		}
		if rm, has := walk(n.right); has && rm > m {
			m = rm
		}
		if !n.hasMax || n.max != m {
			ok = false
		}
		return m, true
	}
	walk(t.root)
	return ok
}
