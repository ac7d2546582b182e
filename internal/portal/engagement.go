package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engagement is one visitor interaction event from the web frontend.
// Age is a pointer because visitors may decline to provide it; malformed
// values are dropped rather than rejected at the API layer.
type Engagement struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	Age             *int      `json:"age,omitempty"`
	Job             string    `json:"job,omitempty"`
	Desires         []string  `json:"desires"`
	QuestionClicked string    `json:"question_clicked,omitempty"`
	Service         string    `json:"service,omitempty"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"timestamp"`
}

// LogEngagement records one engagement event. Missing id and timestamp are
// filled in; missing source defaults to "web".
func (s *Store) LogEngagement(ctx context.Context, e Engagement) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Source == "" {
		e.Source = "web"
	}
	if e.Desires == nil {
		e.Desires = []string{}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO engagements (id, user_id, age, job, desires, question_clicked, service, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		e.ID, nullIfEmpty(e.UserID), e.Age, nullIfEmpty(e.Job), e.Desires,
		nullIfEmpty(e.QuestionClicked), nullIfEmpty(e.Service), e.Source)
	if err != nil {
		return fmt.Errorf("logging engagement: %w", err)
	}
	return nil
}

// RecentEngagements returns the newest events first, at most limit of them.
func (s *Store) RecentEngagements(ctx context.Context, limit int) ([]Engagement, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, COALESCE(user_id, ''), age, COALESCE(job, ''), desires,
		       COALESCE(question_clicked, ''), COALESCE(service, ''), source, created_at
		FROM engagements
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing engagements: %w", err)
	}
	defer rows.Close()

	items := make([]Engagement, 0, limit)
	for rows.Next() {
		var e Engagement
		if err := rows.Scan(&e.ID, &e.UserID, &e.Age, &e.Job, &e.Desires,
			&e.QuestionClicked, &e.Service, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning engagement: %w", err)
		}
		if e.Desires == nil {
			e.Desires = []string{}
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading engagements: %w", err)
	}
	return items, nil
}

// CountEngagements returns the total number of logged events.
func (s *Store) CountEngagements(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM engagements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting engagements: %w", err)
	}
	return int(count), nil
}

// LogAISearch records one AI query and whether an answer was produced.
func (s *Store) LogAISearch(ctx context.Context, query string, success bool) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_searches (id, query, success, created_at)
		VALUES ($1, $2, $3, now())`,
		uuid.New(), query, success)
	if err != nil {
		return fmt.Errorf("logging ai search: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
