package report

import (
	"fmt"
	"math"
	"time"

	"github.com/google/btree"

	"benchviz/internal/model"
)

type bucketItem struct {
	start time.Time
	sum   float64
	count int
}

func (b *bucketItem) Less(than btree.Item) bool {
	return b.start.Before(than.(*bucketItem).start)
}

// Resample sums the deltas of metrics named name into fixed windows aligned
// to the Unix epoch. Windows without a matching line are absent from the
// result. Every ts in metrics is parsed, matching name or not.
func Resample(metrics []model.Metric, name string, window time.Duration) ([]model.ThroughputBucket, error) {
	if window <= 0 {
		return nil, fmt.Errorf("resample window must be positive")
	}

	// windowStart works on UnixNano; leave one window of headroom below.
	earliest := time.Unix(0, math.MinInt64+int64(window))
	latest := time.Unix(0, math.MaxInt64)

	tree := btree.New(16)
	for i, m := range metrics {
		ts, ok, err := m.TS.Time()
		if err != nil {
			return nil, fmt.Errorf("parse ts of row %d: %w", i+1, err)
		}
		if !ok || m.Name != name {
			continue
		}
		if ts.Before(earliest) || ts.After(latest) {
			return nil, fmt.Errorf("ts of row %d: %s is outside the supported range", i+1, m.TS)
		}

		key := &bucketItem{start: windowStart(ts, window)}
		if existing := tree.Get(key); existing != nil {
			item := existing.(*bucketItem)
			item.sum += m.DeltaOrZero()
			item.count++
			continue
		}
		key.sum = m.DeltaOrZero()
		key.count = 1
		tree.ReplaceOrInsert(key)
	}

	buckets := make([]model.ThroughputBucket, 0, tree.Len())
	tree.Ascend(func(i btree.Item) bool {
		item := i.(*bucketItem)
		buckets = append(buckets, model.ThroughputBucket{Start: item.start, Sum: item.sum, Count: item.count})
		return true
	})
	return buckets, nil
}

func windowStart(ts time.Time, window time.Duration) time.Time {
	ns := ts.UnixNano()
	w := window.Nanoseconds()
	start := ns - ns%w
	if ns%w < 0 {
		start -= w
	}
	return time.Unix(0, start).UTC()
}
