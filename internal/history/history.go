/*
Package history remembers which identifiers today mode already published on
the current report date.
*/
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	historyFileName = "aips_today_history.json"
	historyDirName  = "aipsscraper"
)

type History struct {
	ReportDate  string
	Published   map[string]bool
	LastRun     time.Time
	LastUpload  bool
	OutputFiles []string
}

type Manager struct {
	history         History
	mutex           sync.Mutex
	historyFilePath string
	reportLocation  *time.Location
	now             func() time.Time
}

// NewManager keeps its ledger in dir, or in a directory under os.TempDir()
// when dir is empty.
func NewManager(dir string, loc *time.Location) (*Manager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), historyDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	if loc == nil {
		loc = time.Local
	}

	m := &Manager{
		historyFilePath: filepath.Join(dir, historyFileName),
		reportLocation:  loc,
		now:             time.Now,
	}

	m.loadHistory()
	return m, nil
}

func (m *Manager) loadHistory() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	today := m.getCurrentReportDate()
	m.history = History{
		ReportDate: today,
		Published:  make(map[string]bool),
	}

	data, err := os.ReadFile(m.historyFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("history file not found, starting fresh", "path", m.historyFilePath)
			return
		}
		slog.Warn("failed to read history file, starting fresh", "path", m.historyFilePath, "err", err)
		return
	}

	var loaded History
	if err := json.Unmarshal(data, &loaded); err != nil {
		slog.Warn("failed to unmarshal history, starting fresh", "path", m.historyFilePath, "err", err)
		return
	}

	if loaded.ReportDate != today {
		slog.Info("history is from another day, starting new history", "history_date", loaded.ReportDate, "today", today)
		return
	}
	if loaded.Published == nil {
		loaded.Published = make(map[string]bool)
	}
	m.history = loaded
	slog.Info("loaded today history", "published", len(m.history.Published), "date", today)
}

func (m *Manager) saveHistory() error {
	m.history.ReportDate = m.getCurrentReportDate()

	data, err := json.MarshalIndent(m.history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(m.historyFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", m.historyFilePath, err)
	}
	slog.Debug("saved history", "path", m.historyFilePath)
	return nil
}

// FilterNew returns the identifiers not yet published today, sorted.
func (m *Manager) FilterNew(ids []string) []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var fresh []string
	for _, id := range ids {
		if !m.history.Published[id] {
			fresh = append(fresh, id)
		}
	}
	sort.Strings(fresh)
	return fresh
}

// RecordPublished adds ids to today's ledger and saves it.
func (m *Manager) RecordPublished(ids []string, outputFile string, uploaded bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.history.ReportDate != m.getCurrentReportDate() {
		m.history = History{Published: make(map[string]bool)}
	}
	for _, id := range ids {
		m.history.Published[id] = true
	}
	m.history.LastRun = m.now()
	m.history.LastUpload = uploaded
	m.history.OutputFiles = appendUnique(m.history.OutputFiles, outputFile)

	return m.saveHistory()
}

func (m *Manager) HistoryFilePath() string {
	return m.historyFilePath
}

func (m *Manager) getCurrentReportDate() string {
	return m.now().In(m.reportLocation).Format("2006-01-02")
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
