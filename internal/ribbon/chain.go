package ribbon

import (
	"github.com/olivier-w/ribbon/internal/segment"
)

// nilIndex marks an absent neighbour or an empty slot.
const nilIndex = -1

type node struct {
	seg  *segment.Segment
	prev int
	next int
}

// chain is an arena of segment records linked by index. Slots released by
// trimming are reused, so an index is only stable while its segment is live.
type chain struct {
	nodes []node
	free  []int
	first int
	last  int
	count int
}

func newChain() chain {
	return chain{first: nilIndex, last: nilIndex}
}

func (c *chain) alloc(seg *segment.Segment) int {
	n := node{seg: seg, prev: nilIndex, next: nilIndex}
	c.count++
	if k := len(c.free); k > 0 {
		i := c.free[k-1]
		c.free = c.free[:k-1]
		c.nodes[i] = n
		return i
	}
	c.nodes = append(c.nodes, n)
	return len(c.nodes) - 1
}

func (c *chain) release(i int) {
	c.nodes[i] = node{prev: nilIndex, next: nilIndex}
	c.free = append(c.free, i)
	c.count--
}

func (c *chain) seg(i int) *segment.Segment { return c.nodes[i].seg }
func (c *chain) prev(i int) int             { return c.nodes[i].prev }
func (c *chain) next(i int) int             { return c.nodes[i].next }

// buckets partitions live chain indices by face for draw ordering. Every
// structural mutation of the chain goes through add and remove.
type buckets struct {
	back  []int
	front []int
}

func (b *buckets) list(backface bool) *[]int {
	if backface {
		return &b.back
	}
	return &b.front
}

func (b *buckets) add(i int, backface bool) {
	l := b.list(backface)
	*l = append(*l, i)
}

func (b *buckets) remove(i int, backface bool) {
	l := b.list(backface)
	for j := len(*l) - 1; j >= 0; j-- {
		if (*l)[j] == i {
			*l = append((*l)[:j], (*l)[j+1:]...)
			return
		}
	}
	panic("ribbon: segment missing from draw bucket")
}

// appendSegment links seg after the current last segment.
func (r *Ribbon) appendSegment(seg *segment.Segment) {
	i := r.chain.alloc(seg)
	if r.chain.last == nilIndex {
		r.chain.first = i
	} else {
		r.chain.nodes[r.chain.last].next = i
		r.chain.nodes[i].prev = r.chain.last
	}
	r.chain.last = i
	r.adopt(i)
}

// prependSegment links seg before the current first segment.
func (r *Ribbon) prependSegment(seg *segment.Segment) {
	i := r.chain.alloc(seg)
	if r.chain.first == nilIndex {
		r.chain.last = i
	} else {
		r.chain.nodes[r.chain.first].prev = i
		r.chain.nodes[i].next = r.chain.first
	}
	r.chain.first = i
	r.adopt(i)
}

func (r *Ribbon) adopt(i int) {
	seg := r.chain.seg(i)
	r.totalSegmentLength += seg.SegmentLength()
	r.buckets.add(i, seg.Backface())
	r.settings.Stage.AddChild(seg.Graphic())
}

// retire drops a segment that has already been unlinked from its neighbours.
func (r *Ribbon) retire(i int) {
	seg := r.chain.seg(i)
	r.totalSegmentLength -= seg.SegmentLength()
	r.buckets.remove(i, seg.Backface())
	r.settings.Stage.RemoveChild(seg.Graphic())
	if r.pulled == i {
		r.pulled = nilIndex
	}
	r.chain.release(i)
}

// CreateSegments extends both ends of the chain until it covers the viewport
// plus Margin. Calling it again without a Move changes nothing.
func (r *Ribbon) CreateSegments() {
	right := r.settings.Dimensions.Width + Margin
	for r.chain.seg(r.chain.last).EndPoint().X < right {
		prev := r.chain.seg(r.chain.last)
		r.appendSegment(r.factory.New(prev, r.PrimaryColor, r.SecondaryColor, false))
	}
	for r.chain.seg(r.chain.first).StartPoint().X > -Margin {
		next := r.chain.seg(r.chain.first)
		r.prependSegment(r.factory.New(next, r.PrimaryColor, r.SecondaryColor, true))
	}
}

// DestroySegments trims segments lying entirely outside the viewport plus
// Margin. The last remaining segment is never trimmed.
func (r *Ribbon) DestroySegments() {
	for r.chain.first != r.chain.last && r.chain.seg(r.chain.first).EndPoint().X < -Margin {
		old := r.chain.first
		r.chain.first = r.chain.next(old)
		r.chain.nodes[r.chain.first].prev = nilIndex
		r.retire(old)
	}

	right := r.settings.Dimensions.Width + Margin
	for r.chain.first != r.chain.last && r.chain.seg(r.chain.last).StartPoint().X > right {
		old := r.chain.last
		r.chain.last = r.chain.prev(old)
		r.chain.nodes[r.chain.last].next = nilIndex
		r.retire(old)
	}
}

// Move shifts the whole chain horizontally and restores coverage.
func (r *Ribbon) Move(amount float64) {
	for i := r.chain.first; i != nilIndex; i = r.chain.next(i) {
		r.chain.seg(i).Move(amount)
	}
	if r.CanDestruct {
		r.DestroySegments()
	}
	r.CreateSegments()
}
