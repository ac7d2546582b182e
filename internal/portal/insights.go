package portal

import (
	"context"
	"fmt"
)

// AgeGroupLabels are the dashboard buckets, in display order.
var AgeGroupLabels = []string{"<18", "18-25", "26-40", "41-60", "60+"}

// Insights aggregates engagement events for the admin dashboard.
type Insights struct {
	AgeGroups map[string]int `json:"age_groups"`
	Services  map[string]int `json:"services"`
	Questions map[string]int `json:"questions"`
}

// Insights computes age, service and question breakdowns over all logged
// engagements. Events without an age are excluded from the age buckets but
// still count toward services and questions.
func (s *Store) Insights(ctx context.Context) (Insights, error) {
	out := Insights{
		AgeGroups: make(map[string]int, len(AgeGroupLabels)),
		Services:  make(map[string]int),
		Questions: make(map[string]int),
	}
	for _, label := range AgeGroupLabels {
		out.AgeGroups[label] = 0
	}

	rows, err := s.db.Query(ctx, `
		SELECT CASE
		         WHEN age < 18 THEN '<18'
		         WHEN age <= 25 THEN '18-25'
		         WHEN age <= 40 THEN '26-40'
		         WHEN age <= 60 THEN '41-60'
		         ELSE '60+'
		       END AS bucket,
		       count(*)
		FROM engagements
		WHERE age IS NOT NULL AND age > 0
		GROUP BY bucket`)
	if err != nil {
		return Insights{}, fmt.Errorf("aggregating age groups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			bucket string
			n      int64
		)
		if err := rows.Scan(&bucket, &n); err != nil {
			return Insights{}, fmt.Errorf("scanning age bucket: %w", err)
		}
		out.AgeGroups[bucket] = int(n)
	}
	if err := rows.Err(); err != nil {
		return Insights{}, fmt.Errorf("reading age buckets: %w", err)
	}

	rows, err = s.db.Query(ctx, `
		SELECT COALESCE(NULLIF(service, ''), 'Unknown'),
		       COALESCE(NULLIF(question_clicked, ''), 'Direct Chat'),
		       count(*)
		FROM engagements
		GROUP BY 1, 2`)
	if err != nil {
		return Insights{}, fmt.Errorf("aggregating services: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			service  string
			question string
			n        int64
		)
		if err := rows.Scan(&service, &question, &n); err != nil {
			return Insights{}, fmt.Errorf("scanning service bucket: %w", err)
		}
		out.Services[service] += int(n)
		out.Questions[question] += int(n)
	}
	if err := rows.Err(); err != nil {
		return Insights{}, fmt.Errorf("reading service buckets: %w", err)
	}

	return out, nil
}
