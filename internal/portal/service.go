package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Service is one entry of the public service catalogue. Payload holds the
// full document as submitted (multilingual names, subservices, questions);
// the structure is schemaless on purpose, the frontend owns its shape.
type Service struct {
	ID      string
	Name    json.RawMessage
	Payload json.RawMessage
}

// ListServices returns every service payload in catalogue order.
func (s *Store) ListServices(ctx context.Context) ([]json.RawMessage, error) {
	rows, err := s.db.Query(ctx, `SELECT payload FROM services ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	defer rows.Close()

	services := make([]json.RawMessage, 0)
	for rows.Next() {
		var payload json.RawMessage
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning service: %w", err)
		}
		services = append(services, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading services: %w", err)
	}
	return services, nil
}

// GetService returns one service payload by id, or ErrNotFound.
func (s *Store) GetService(ctx context.Context, id string) (json.RawMessage, error) {
	var payload json.RawMessage
	err := s.db.QueryRow(ctx, `SELECT payload FROM services WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("service %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting service %q: %w", id, err)
	}
	return payload, nil
}

// UpsertService stores the submitted document under its "id" field, replacing
// any existing version. The payload must be a JSON object with a non-empty
// string id.
func (s *Store) UpsertService(ctx context.Context, payload json.RawMessage) (string, error) {
	var envelope struct {
		ID   string          `json:"id"`
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", fmt.Errorf("parsing service payload: %w", err)
	}
	if strings.TrimSpace(envelope.ID) == "" {
		return "", fmt.Errorf("service payload: id required")
	}

	name := envelope.Name
	if len(name) == 0 {
		name = json.RawMessage(`{}`)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO services (id, name, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    payload = EXCLUDED.payload,
		    updated_at = now()`,
		envelope.ID, name, payload)
	if err != nil {
		return "", fmt.Errorf("upserting service %q: %w", envelope.ID, err)
	}
	return envelope.ID, nil
}

// DeleteService removes a service, reporting ErrNotFound if no row matched.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting service %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service %q: %w", id, ErrNotFound)
	}
	return nil
}

// CountServices returns the catalogue size.
func (s *Store) CountServices(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM services`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting services: %w", err)
	}
	return int(count), nil
}
