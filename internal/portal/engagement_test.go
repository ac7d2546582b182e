package portal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/govlk/citizenport/internal/portal"
)

func TestLogEngagement_FillsDefaults(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	err := newStore(db).LogEngagement(context.Background(), portal.Engagement{
		Job:     "teacher",
		Service: "ministry_education",
	})
	if err != nil {
		t.Fatalf("LogEngagement() unexpected error: %v", err)
	}

	args := db.execCalls[0].args
	if id, ok := args[0].(uuid.UUID); !ok || id == uuid.Nil {
		t.Errorf("id arg = %v, want generated uuid", args[0])
	}
	if desires, ok := args[4].([]string); !ok || desires == nil {
		t.Errorf("desires arg = %v, want empty non-nil slice", args[4])
	}
	if args[7] != "web" {
		t.Errorf("source arg = %v, want web default", args[7])
	}
}

func TestLogEngagement_NullsOptionalFields(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	err := newStore(db).LogEngagement(context.Background(), portal.Engagement{})
	if err != nil {
		t.Fatalf("LogEngagement() unexpected error: %v", err)
	}

	args := db.execCalls[0].args
	// user_id, job, question_clicked and service become SQL NULLs when empty.
	for _, idx := range []int{1, 3, 5, 6} {
		if ptr, ok := args[idx].(*string); !ok || ptr != nil {
			t.Errorf("arg %d = %v, want nil *string", idx, args[idx])
		}
	}
}

func TestLogEngagement_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	age := 34
	id := uuid.New()
	db := &fakeDB{}
	err := newStore(db).LogEngagement(context.Background(), portal.Engagement{
		ID:              id,
		UserID:          "visitor-7",
		Age:             &age,
		Desires:         []string{"passport"},
		QuestionClicked: "How do I renew?",
		Source:          "kiosk",
	})
	if err != nil {
		t.Fatalf("LogEngagement() unexpected error: %v", err)
	}

	args := db.execCalls[0].args
	if args[0] != id {
		t.Errorf("id arg = %v, want explicit id", args[0])
	}
	if got := args[2].(*int); *got != 34 {
		t.Errorf("age arg = %v, want 34", got)
	}
	if args[7] != "kiosk" {
		t.Errorf("source arg = %v, want kiosk", args[7])
	}
}

func TestRecentEngagements(t *testing.T) {
	t.Parallel()

	now := time.Now()
	db := &fakeDB{resultSets: [][][]any{{
		{uuid.New(), "visitor-2", 40, "engineer", []string{"tax"}, "Tax deadline?", "ministry_it", "web", now},
		{uuid.New(), "", nil, "", nil, "", "", "web", now.Add(-time.Hour)},
	}}}

	items, err := newStore(db).RecentEngagements(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentEngagements() unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("RecentEngagements() returned %d items, want 2", len(items))
	}

	first := items[0]
	if first.UserID != "visitor-2" || first.Service != "ministry_it" {
		t.Errorf("items[0] = %+v", first)
	}
	if first.Age == nil || *first.Age != 40 {
		t.Errorf("items[0].Age = %v, want 40", first.Age)
	}
	if items[1].Age != nil {
		t.Errorf("items[1].Age = %v, want nil", items[1].Age)
	}
	if items[1].Desires == nil {
		t.Error("items[1].Desires is nil, want empty slice for JSON encoding")
	}
}

func TestRecentEngagements_DefaultLimit(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	if _, err := newStore(db).RecentEngagements(context.Background(), 0); err != nil {
		t.Fatalf("RecentEngagements() unexpected error: %v", err)
	}
	if got := db.queryCalls[0].args[0]; got != 100 {
		t.Errorf("limit arg = %v, want default 100", got)
	}
}

func TestCountEngagements(t *testing.T) {
	t.Parallel()

	db := &fakeDB{rowVals: []any{int64(7)}}
	count, err := newStore(db).CountEngagements(context.Background())
	if err != nil {
		t.Fatalf("CountEngagements() unexpected error: %v", err)
	}
	if count != 7 {
		t.Errorf("CountEngagements() = %d, want 7", count)
	}
}

func TestLogAISearch(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	if err := newStore(db).LogAISearch(context.Background(), "passport fees", true); err != nil {
		t.Fatalf("LogAISearch() unexpected error: %v", err)
	}

	args := db.execCalls[0].args
	if args[1] != "passport fees" {
		t.Errorf("query arg = %v", args[1])
	}
	if args[2] != true {
		t.Errorf("success arg = %v, want true", args[2])
	}
}
