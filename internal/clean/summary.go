package clean

import (
	"sort"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
)

// Summarize folds the ok and partial items into totals plus category and
// drive buckets. Items without a drive count toward the totals and their
// category but not toward any drive bucket.
func Summarize(items []rules.ItemReport) rules.Summary {
	var s rules.Summary
	byCategory := newBucketSet()
	byDrive := newBucketSet()

	for _, it := range items {
		if !it.Status.Counted() {
			continue
		}
		s.TotalBytes += it.TotalBytes
		s.TotalFiles += it.FileCount
		byCategory.add(it.Category, it.TotalBytes, it.FileCount)
		if it.Drive != "" {
			byDrive.add(it.Drive, it.TotalBytes, it.FileCount)
		}
	}

	s.ByCategory = byCategory.buckets(s.TotalBytes)
	s.ByDrive = byDrive.buckets(s.TotalBytes)
	return s
}

// bucketSet accumulates buckets in first-seen order.
type bucketSet struct {
	index map[string]int
	list  []rules.SummaryBucket
}

func newBucketSet() *bucketSet {
	return &bucketSet{index: make(map[string]int)}
}

func (b *bucketSet) add(key string, bytes, files int64) {
	i, ok := b.index[key]
	if !ok {
		i = len(b.list)
		b.index[key] = i
		b.list = append(b.list, rules.SummaryBucket{Key: key})
	}
	b.list[i].Bytes += bytes
	b.list[i].Files += files
}

// buckets returns the set sorted by bytes, largest first. Ties keep
// first-seen order.
func (b *bucketSet) buckets(total int64) []rules.SummaryBucket {
	out := make([]rules.SummaryBucket, len(b.list))
	copy(out, b.list)
	for i := range out {
		out[i].Percent = percentOf(out[i].Bytes, total)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Bytes > out[j].Bytes
	})
	return out
}

// percentOf returns part as a percentage of total, or 0 for an empty total.
func percentOf(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
