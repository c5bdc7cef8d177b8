package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aki307/frext/config"
	"github.com/aki307/frext/model"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ResultStore keeps processing records in memory, scoped per user.
// Oldest records are evicted once maxResults is exceeded.
type ResultStore struct {
	mu         sync.RWMutex
	records    map[string]*storedRecord
	maxResults int // 0 = unlimited
}

type storedRecord struct {
	owner  string
	record model.ProcessingRecord
}

// HistoryFilter selects a page of a user's history. Zero values mean
// first page, default limit, any status, any template.
type HistoryFilter struct {
	Page       int
	Limit      int
	Status     string
	TemplateID string
}

func NewResultStore(cfg *config.StoreConfig) *ResultStore {
	maxResults := cfg.MaxResults
	if maxResults < 0 {
		maxResults = 0
	}
	slog.Info("result store initialized", "max_results", maxResults)
	return &ResultStore{
		records:    make(map[string]*storedRecord),
		maxResults: maxResults,
	}
}

// Save stores rec for owner, filling in id, status and creation time
// when missing, and returns the stored copy.
func (s *ResultStore) Save(owner string, rec model.ProcessingRecord) model.ProcessingRecord {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = model.StatusCompleted
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// ids are global; another user's record is never overwritten
	if existing, ok := s.records[rec.ID]; ok && existing.owner != owner {
		rec.ID = uuid.New().String()
	}
	s.records[rec.ID] = &storedRecord{owner: owner, record: rec}
	s.cleanupIfNeeded()
	return rec
}

func (s *ResultStore) Get(owner, id string) (model.ProcessingRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok || r.owner != owner {
		return model.ProcessingRecord{}, false
	}
	return r.record, true
}

func (s *ResultStore) byOwner(owner string) []model.ProcessingRecord {
	var out []model.ProcessingRecord
	for _, r := range s.records {
		if r.owner == owner {
			out = append(out, r.record)
		}
	}
	return out
}

// List returns one page of owner's records, newest first.
func (s *ResultStore) List(owner string, f HistoryFilter) model.HistoryPage {
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	s.mu.RLock()
	all := s.byOwner(owner)
	s.mu.RUnlock()

	matched := make([]model.ProcessingRecord, 0, len(all))
	for _, r := range all {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.TemplateID != "" && r.TemplateID != f.TemplateID {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	items := []model.ProcessingRecord{}
	if start := (page - 1) * limit; start < len(matched) {
		end := start + limit
		if end > len(matched) {
			end = len(matched)
		}
		items = matched[start:end]
	}

	return model.HistoryPage{Items: items, Total: len(matched), Page: page, Limit: limit}
}

// Stats summarizes owner's records against a monthly quota.
func (s *ResultStore) Stats(owner string, monthlyQuota int, now time.Time) model.UsageStats {
	s.mu.RLock()
	all := s.byOwner(owner)
	s.mu.RUnlock()

	var stats model.UsageStats
	var confSum float64
	var confN int
	y, m, _ := now.Date()
	for _, r := range all {
		stats.TotalProcessed++
		if ry, rm, _ := r.CreatedAt.Date(); ry == y && rm == m {
			stats.MonthlyProcessed++
		}
		switch {
		case r.GPTResult != nil:
			confSum += r.GPTResult.Confidence
			confN++
		case r.OCRResult != nil:
			confSum += r.OCRResult.Confidence
			confN++
		}
	}
	if confN > 0 {
		stats.AverageConfidence = confSum / float64(confN)
	}
	stats.RemainingQuota = monthlyQuota - stats.MonthlyProcessed
	if stats.RemainingQuota < 0 {
		stats.RemainingQuota = 0
	}
	return stats
}

// cleanupIfNeeded removes the oldest records once the store exceeds maxResults
// Must be called with lock held
func (s *ResultStore) cleanupIfNeeded() {
	if s.maxResults <= 0 || len(s.records) <= s.maxResults {
		return
	}

	records := make([]*storedRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].record.CreatedAt.Before(records[j].record.CreatedAt)
	})

	removeCount := len(records) - s.maxResults
	for i := 0; i < removeCount; i++ {
		slog.Info("evicting old result",
			"result_id", records[i].record.ID,
			"created_at", records[i].record.CreatedAt,
		)
		delete(s.records, records[i].record.ID)
	}
}

// Count returns the number of records in the store
func (s *ResultStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
