package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizdesk/quizdesk/internal/results"
	"github.com/quizdesk/quizdesk/internal/stats"
)

// ListResultsHandler serves every stored result, newest first. Answer
// bodies remain encrypted.
func ListResultsHandler(res *results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := res.ListAll(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if all == nil {
			all = []results.StoredResult{}
		}
		_ = json.NewEncoder(w).Encode(all)
	}
}

func StatsHandler(res *results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := res.ListAll(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(stats.Summarize(all))
	}
}
