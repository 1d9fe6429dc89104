package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-hparams/pkg/activity"
	"github.com/goliatone/go-hparams/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsResolutionEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	runID := uuid.NewString()

	event := activity.BuildResolutionEvent(activity.ResolutionInput{
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		RunID:      runID,
		Config:     "trainer",
		Channel:    "hparams",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identity: %+v", record)
	}
	if record.Verb != activity.VerbResolved || record.ObjectType != activity.ObjectTypeConfig || record.ObjectID != runID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "hparams" {
		t.Fatalf("expected channel hparams, got %q", record.Channel)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v, got %v", now, record.OccurredAt)
	}
	if record.Data["config"] != "trainer" || record.Data["run_id"] != runID {
		t.Fatalf("expected metadata passthrough, got %v", record.Data)
	}
}

func TestHookNotifyInvalidIdentityFallsBackToNil(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbResolved,
		ActorID:    "not-a-uuid",
		ObjectType: activity.ObjectTypeConfig,
		ObjectID:   "run-1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor for invalid uuid, got %s", sink.records[0].ActorID)
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbResolveFailed,
		ObjectType: activity.ObjectTypeConfig,
		ObjectID:   "run-2",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
