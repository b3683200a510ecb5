// Package stats aggregates stored results into summary metrics.
package stats

import (
	"github.com/quizdesk/quizdesk/internal/results"
)

// Bucket is one histogram bar. Lo/Hi bound the bucket; the last bucket is
// closed on both ends so the maximum score lands inside it.
type Bucket struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

type Summary struct {
	DistinctUsers  int      `json:"distinct_users"`
	MeanScore      float64  `json:"mean_score"`
	TotalResponses int      `json:"total_responses"`
	Histogram      []Bucket `json:"histogram"`
}

const histogramBuckets = 10

// Summarize aggregates persisted results. An empty input yields a zero
// Summary: that is "no data yet", not an error.
func Summarize(rs []results.StoredResult) Summary {
	if len(rs) == 0 {
		return Summary{}
	}

	users := map[string]struct{}{}
	sum := 0
	lo, hi := rs[0].Score, rs[0].Score
	for _, r := range rs {
		users[r.User] = struct{}{}
		sum += r.Score
		if r.Score < lo {
			lo = r.Score
		}
		if r.Score > hi {
			hi = r.Score
		}
	}
	return Summary{
		DistinctUsers:  len(users),
		MeanScore:      float64(sum) / float64(len(rs)),
		TotalResponses: len(rs),
		Histogram:      histogram(rs, lo, hi),
	}
}

// histogram splits [lo, hi] into ten equal-width buckets. When every score
// is identical a single bucket holds everything.
func histogram(rs []results.StoredResult, lo, hi int) []Bucket {
	if lo == hi {
		return []Bucket{{Lo: float64(lo), Hi: float64(hi), Count: len(rs)}}
	}
	span := hi - lo
	out := make([]Bucket, histogramBuckets)
	for i := range out {
		out[i] = Bucket{
			Lo: float64(lo) + float64(span)*float64(i)/histogramBuckets,
			Hi: float64(lo) + float64(span)*float64(i+1)/histogramBuckets,
		}
	}
	for _, r := range rs {
		i := (r.Score - lo) * histogramBuckets / span
		if i >= histogramBuckets {
			i = histogramBuckets - 1
		}
		out[i].Count++
	}
	return out
}
