package searchhistory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/heatparts/storefront/internal/repo"
	"github.com/heatparts/storefront/pkg/db/models"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxEntries is how many (term, mode) pairs are retained.
const MaxEntries = 20

// Entry is one remembered search.
type Entry struct {
	Term       string    `json:"term"`
	Mode       string    `json:"mode"`
	SearchedAt time.Time `json:"searched_at"`
}

// Repository stores recent searches, newest MaxEntries only.
type Repository struct {
	repo.Base
	now func() time.Time
}

// NewRepository binds the history to db. now defaults to time.Now.
func NewRepository(db *gorm.DB, now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}
	return &Repository{Base: repo.NewBase(db), now: now}
}

// Save records a search. Saving an existing (term, mode) refreshes its
// timestamp. Entries beyond MaxEntries are pruned oldest first.
func (r *Repository) Save(ctx context.Context, term, mode string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}

	return r.InTx(ctx, func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.SearchHistoryEntry{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("load search history sequence: %w", err)
		}
		row := models.SearchHistoryEntry{Term: term, Mode: mode, SearchedAt: r.now().UTC(), Seq: last + 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "term"}, {Name: "mode"}},
			DoUpdates: clause.AssignmentColumns([]string{"searched_at", "seq"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert search history: %w", err)
		}
		return prune(tx)
	})
}

func prune(tx *gorm.DB) error {
	var rows []models.SearchHistoryEntry
	if err := newestFirst(tx).Find(&rows).Error; err != nil {
		return fmt.Errorf("load search history: %w", err)
	}
	if len(rows) <= MaxEntries {
		return nil
	}
	for _, entry := range rows[MaxEntries:] {
		if err := tx.Where("term = ? AND mode = ?", entry.Term, entry.Mode).
			Delete(&models.SearchHistoryEntry{}).Error; err != nil {
			return fmt.Errorf("prune search history: %w", err)
		}
	}
	return nil
}

// newestFirst orders by save order. Rows written before seq existed share
// seq 0 and fall back to their timestamp.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("seq DESC").Order("searched_at DESC").Order("term ASC")
}

// List returns entries newest first.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	var rows []models.SearchHistoryEntry
	if err := newestFirst(r.DB(ctx)).Limit(MaxEntries).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, Entry{Term: row.Term, Mode: row.Mode, SearchedAt: row.SearchedAt})
	}
	return out, nil
}

// Delete forgets one entry.
func (r *Repository) Delete(ctx context.Context, term, mode string) error {
	return r.DB(ctx).Where("term = ? AND mode = ?", term, mode).Delete(&models.SearchHistoryEntry{}).Error
}

// Clear forgets every entry.
func (r *Repository) Clear(ctx context.Context) error {
	return r.DB(ctx).Where("1 = 1").Delete(&models.SearchHistoryEntry{}).Error
}
