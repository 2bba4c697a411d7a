// Package history persists chat exchanges and user sessions with gorm.
package history

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// Store implements ports.HistoryStore.
type Store struct {
	db *gorm.DB
}

// Open opens the SQLite history database at path, creating it and its
// tables as needed.
func Open(path string) (*Store, error) {
	if path == "" {
		path = filepath.Join("data", "history.db")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	return New(db)
}

// New wraps an open gorm connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&chatHistory{}, &userSession{}); err != nil {
		return nil, fmt.Errorf("migrating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveExchange stores a record and returns it with its ID and timestamps set.
func (s *Store) SaveExchange(ctx context.Context, rec entities.ChatRecord) (*entities.ChatRecord, error) {
	row := chatHistory{
		UserEmail:        rec.UserEmail,
		UserQuery:        rec.UserQuery,
		AIResponse:       rec.AIResponse,
		QueryComplexity:  rec.QueryComplexity,
		ChunksFound:      rec.ChunksFound,
		RetrievedSources: rec.RetrievedSources,
		IntentAnalysis:   rec.IntentAnalysis,
		ResponseTimeMS:   rec.ResponseTimeMS,
	}
	if row.QueryComplexity == "" {
		row.QueryComplexity = entities.ComplexitySimple
	}
	if row.RetrievedSources == nil {
		row.RetrievedSources = []string{}
	}
	if rec.SessionID != "" {
		row.SessionID = &rec.SessionID
	}
	if !rec.CreatedAt.IsZero() {
		row.CreatedAt = rec.CreatedAt
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("saving exchange: %w", err)
	}
	logger.Debugf("saved exchange %d for %s", row.ID, rec.UserEmail)

	out := row.toEntity()
	return &out, nil
}

// latest returns up to limit rows for a user, oldest first.
func (s *Store) latest(ctx context.Context, userEmail string, limit int) ([]chatHistory, error) {
	var rows []chatHistory
	err := s.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	slices.Reverse(rows)
	return rows, nil
}

// RecentExchanges returns up to limit exchanges for a user, oldest first.
func (s *Store) RecentExchanges(ctx context.Context, userEmail string, limit int) ([]entities.Exchange, error) {
	rows, err := s.latest(ctx, userEmail, limit)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Exchange, len(rows))
	for i, r := range rows {
		out[i] = entities.Exchange{Query: r.UserQuery, Answer: r.AIResponse}
	}
	return out, nil
}

// History returns up to limit records for a user, oldest first.
func (s *Store) History(ctx context.Context, userEmail string, limit int) ([]entities.ChatRecord, error) {
	rows, err := s.latest(ctx, userEmail, limit)
	if err != nil {
		return nil, err
	}
	out := make([]entities.ChatRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toEntity()
	}
	return out, nil
}

// Stats aggregates a user's history. A user with no history gets zeroes
// and an empty breakdown.
func (s *Store) Stats(ctx context.Context, userEmail string) (*entities.UserStats, error) {
	db := s.db.WithContext(ctx).Model(&chatHistory{}).Where("user_email = ?", userEmail)

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting history: %w", err)
	}
	stats := &entities.UserStats{ComplexityBreakdown: map[string]int{}}
	if total == 0 {
		return stats, nil
	}
	stats.TotalQueries = int(total)

	var agg struct {
		Sessions  int64
		AvgChunks float64
	}
	err := db.Session(&gorm.Session{}).
		Select("COUNT(DISTINCT COALESCE(session_id, '')) AS sessions, AVG(chunks_found) AS avg_chunks").
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating history: %w", err)
	}
	stats.TotalSessions = int(agg.Sessions)
	stats.AvgChunksRetrieved = math.Round(agg.AvgChunks*10) / 10

	var counts []struct {
		QueryComplexity string
		N               int
	}
	err = db.Session(&gorm.Session{}).
		Select("query_complexity, COUNT(*) AS n").
		Group("query_complexity").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("counting complexity: %w", err)
	}
	for _, level := range entities.ComplexityLevels {
		stats.ComplexityBreakdown[level] = 0
	}
	for _, c := range counts {
		if _, ok := stats.ComplexityBreakdown[c.QueryComplexity]; ok {
			stats.ComplexityBreakdown[c.QueryComplexity] = c.N
		}
	}

	var recent chatHistory
	err = db.Session(&gorm.Session{}).Order("created_at DESC").Order("id DESC").First(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("loading most recent: %w", err)
	}
	stats.MostRecent = &recent.CreatedAt

	return stats, nil
}

// SetFeedback records whether an answer helped. Notes replace earlier
// notes only when non-empty.
func (s *Store) SetFeedback(ctx context.Context, chatID uint, helpful bool, notes string) error {
	var row chatHistory
	err := s.db.WithContext(ctx).First(&row, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("chat %d: %w", chatID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading chat %d: %w", chatID, err)
	}

	updates := map[string]any{"is_helpful": helpful}
	if notes != "" {
		updates["feedback_notes"] = notes
	}
	return s.db.WithContext(ctx).Model(&row).Updates(updates).Error
}

// TouchSession creates the user's session on first use, switches it to
// sessionID when one is given, and counts one more query.
func (s *Store) TouchSession(ctx context.Context, userEmail, sessionID string) (*entities.UserSession, error) {
	var out userSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		err := tx.Where("user_email = ?", userEmail).First(&out).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = userSession{
				UserEmail:   userEmail,
				SessionID:   sessionID,
				Preferences: map[string]any{},
				FirstVisit:  now,
			}
			if out.SessionID == "" {
				out.SessionID = uuid.NewString()
			}
		case err != nil:
			return err
		case sessionID != "":
			out.SessionID = sessionID
		}
		out.TotalQueries++
		out.LastActivity = now
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, fmt.Errorf("updating session for %s: %w", userEmail, err)
	}
	return out.toEntity(), nil
}

// Session returns the user's session or domain.ErrNotFound.
func (s *Store) Session(ctx context.Context, userEmail string) (*entities.UserSession, error) {
	var row userSession
	err := s.db.WithContext(ctx).Where("user_email = ?", userEmail).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session for %s: %w", userEmail, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}
