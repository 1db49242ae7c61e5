package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	coresink "github.com/kilianp07/batteryform/core/sink"
)

// JSONLConfig configures the JSON-lines sink.
type JSONLConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// SetDefaults applies sane defaults.
func (c *JSONLConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "submissions.jsonl"
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
}

// JSONLSink appends submissions to a rotating JSON-lines file.
type JSONLSink struct {
	mu   sync.Mutex
	out  *lumberjack.Logger
	path string
}

// NewJSONLSink creates the sink and its parent directory.
func NewJSONLSink(cfg JSONLConfig) (*JSONLSink, error) {
	cfg.SetDefaults()
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("jsonl sink: %w", err)
		}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return &JSONLSink{out: lj, path: cfg.Path}, nil
}

// Emit writes the submission as one JSON line.
func (s *JSONLSink) Emit(_ context.Context, sub coresink.Submission) error {
	line, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.out.Write(append(line, '\n'))
	return err
}

// ReadAll reads every submission from the rotated backups and the active
// file, oldest first. Compressed backups and undecodable lines are skipped.
func (s *JSONLSink) ReadAll() ([]coresink.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := filepath.Glob(rotatedPattern(s.path))
	if err != nil {
		return nil, err
	}
	// backup names embed a sortable timestamp
	sort.Strings(files)
	if _, err := os.Stat(s.path); err == nil {
		files = append(files, s.path)
	}
	var res []coresink.Submission
	for _, f := range files {
		subs, err := readJSONL(f)
		if err != nil {
			return nil, err
		}
		res = append(res, subs...)
	}
	return res, nil
}

// rotatedPattern matches lumberjack backups: name-<timestamp>.ext.
func rotatedPattern(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + "-*" + ext
}

func readJSONL(path string) ([]coresink.Submission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []coresink.Submission
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var sub coresink.Submission
		if err := json.Unmarshal(scanner.Bytes(), &sub); err != nil {
			continue
		}
		res = append(res, sub)
	}
	return res, scanner.Err()
}

// Close closes the underlying file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}
