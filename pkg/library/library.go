// Package library keeps a JSON-file-backed record of generated pieces and a
// queue of pending generation requests shared between the web UI and the
// daemon.
package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type GeneratedItem struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"` // "script" or "audio"
	Theme     string    `json:"theme,omitempty"`
	Voice     string    `json:"voice,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Request struct {
	Theme  string `json:"theme"`
	Length string `json:"length"`
	Voice  string `json:"voice,omitempty"`
}

var (
	mu          sync.Mutex
	historyPath = "./output/history.json"
	queuePath   = "./output/queue.json"
	queueMu     sync.Mutex
)

// Init points the library at a data directory. Each binary calls this so the
// UI and the daemon share the same files on a common volume mount.
func Init(dataDir string) {
	mu.Lock()
	defer mu.Unlock()
	queueMu.Lock()
	defer queueMu.Unlock()

	historyPath = filepath.Join(dataDir, "history.json")
	queuePath = filepath.Join(dataDir, "queue.json")
}

// ensureDir creates the directory if it doesn't exist
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// History reads the list of generated items from the JSON file.
func History() ([]GeneratedItem, error) {
	mu.Lock()
	defer mu.Unlock()

	data, err := os.ReadFile(historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []GeneratedItem{}, nil
		}
		return nil, err
	}

	if len(data) == 0 {
		return []GeneratedItem{}, nil
	}

	var items []GeneratedItem
	if err := json.Unmarshal(data, &items); err != nil {
		// Corrupted file; return empty and let the next Record overwrite it.
		return []GeneratedItem{}, nil
	}
	return items, nil
}

// Record appends an item to the history, drops entries older than the
// retention period, and saves the file.
func Record(item GeneratedItem, retentionPeriod time.Duration) error {
	mu.Lock()
	defer mu.Unlock()

	data, err := os.ReadFile(historyPath)
	var items []GeneratedItem
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		items = []GeneratedItem{}
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			items = []GeneratedItem{}
		}
	}

	items = append(items, item)

	var recent []GeneratedItem
	cutoff := time.Now().Add(-retentionPeriod)
	for _, i := range items {
		if i.Timestamp.After(cutoff) {
			recent = append(recent, i)
		}
	}

	newData, err := json.MarshalIndent(recent, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureDir(historyPath); err != nil {
		return err
	}

	return os.WriteFile(historyPath, newData, 0644)
}

// Enqueue adds a generation request to the pending queue.
func Enqueue(req Request) error {
	queueMu.Lock()
	defer queueMu.Unlock()

	data, err := os.ReadFile(queuePath)
	var queue []Request
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		queue = []Request{}
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &queue); err != nil {
			queue = []Request{}
		}
	}

	queue = append(queue, req)

	newData, err := json.MarshalIndent(queue, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureDir(queuePath); err != nil {
		return err
	}

	return os.WriteFile(queuePath, newData, 0644)
}

// NextRequest retrieves and removes the first pending request. It returns
// nil when the queue is empty.
func NextRequest() (*Request, error) {
	queueMu.Lock()
	defer queueMu.Unlock()

	data, err := os.ReadFile(queuePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(data) == 0 {
		return nil, nil
	}

	var queue []Request
	if err := json.Unmarshal(data, &queue); err != nil {
		return nil, err
	}

	if len(queue) == 0 {
		return nil, nil
	}

	req := queue[0]
	queue = queue[1:]

	newData, err := json.MarshalIndent(queue, "", "  ")
	if err != nil {
		return nil, err
	}

	if err := ensureDir(queuePath); err != nil {
		return nil, err
	}

	if err := os.WriteFile(queuePath, newData, 0644); err != nil {
		return nil, err
	}

	return &req, nil
}

// PendingRequests retrieves all queued requests without removing them.
func PendingRequests() ([]Request, error) {
	queueMu.Lock()
	defer queueMu.Unlock()

	data, err := os.ReadFile(queuePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Request{}, nil
		}
		return nil, err
	}

	if len(data) == 0 {
		return []Request{}, nil
	}

	var queue []Request
	if err := json.Unmarshal(data, &queue); err != nil {
		return []Request{}, nil
	}

	return queue, nil
}
