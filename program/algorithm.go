package main

import (
	"math"
	"sort"
	"strconv"

	"github.com/keilerkonzept/topk"
	"github.com/keilerkonzept/topk/heap"
)

// IntervalClass is one row of the dominant-interval leaderboard.
type IntervalClass struct {
	Center float64 // ms
	Width  float64 // ms
	Count  uint32
}

// IntervalRanker finds the most frequent inter-spike intervals after
// quantizing them to a fixed resolution. Counting goes through a top-K sketch
// so memory stays bounded by K regardless of how many distinct classes the
// recording has.
type IntervalRanker struct {
	k          int
	resolution float64
	width      int
	depth      int
	decay      float64
}

func NewIntervalRanker(k int, resolution float64) *IntervalRanker {
	if k < 1 {
		k = 1
	}
	if !(resolution > 0) {
		resolution = 1
	}
	return &IntervalRanker{
		k:          k,
		resolution: resolution,
		width:      max(64, 16*k),
		depth:      3,
		decay:      0.9,
	}
}

// Rank returns up to K interval classes, most frequent first. Ties are broken
// by the shorter interval.
func (r *IntervalRanker) Rank(intervals []float64) []IntervalClass {
	if len(intervals) == 0 {
		return nil
	}
	sketch := topk.New(r.k,
		topk.WithWidth(r.width),
		topk.WithDepth(r.depth),
		topk.WithDecay(float32(r.decay)),
	)
	for _, v := range intervals {
		sketch.Incr(r.classKey(v))
	}

	items := cloneItems(sketch.SortedSlice())
	sort.SliceStable(items, func(i, j int) bool {
		li := items[i]
		lj := items[j]
		if li.Count != lj.Count {
			return li.Count > lj.Count
		}
		return r.classIndex(li.Item) < r.classIndex(lj.Item)
	})
	if len(items) > r.k {
		items = items[:r.k]
	}

	out := make([]IntervalClass, 0, len(items))
	for _, it := range items {
		if it.Count == 0 {
			continue
		}
		idx := r.classIndex(it.Item)
		out = append(out, IntervalClass{
			Center: (float64(idx) + 0.5) * r.resolution,
			Width:  r.resolution,
			Count:  it.Count,
		})
	}
	return out
}

func (r *IntervalRanker) classKey(v float64) string {
	return strconv.FormatInt(int64(math.Floor(v/r.resolution)), 10)
}

func (r *IntervalRanker) classIndex(key string) int64 {
	i, _ := strconv.ParseInt(key, 10, 64)
	return i
}

func cloneItems(in []heap.Item) []heap.Item {
	out := make([]heap.Item, len(in))
	copy(out, in)
	return out
}
