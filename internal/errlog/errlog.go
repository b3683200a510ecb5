// Package errlog keeps an append-only log of validation failures for later
// audit. Each record is one JSON object on its own line.
package errlog

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

type Log struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Log { return &Log{path: path} }

type record struct {
	Errors    []string `json:"errors"`
	Timestamp string   `json:"timestamp"`
}

// Append writes one record carrying the full issue list and the current
// time. The file is created on first use and only ever appended to.
func (l *Log) Append(issues []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := json.Marshal(record{
		Errors:    issues,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = f.Write(append(buf, '\n'))
	return err
}
