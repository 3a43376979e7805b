package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/recipehub/backend/internal/testkit"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

type harness struct {
	store      *testkit.Store
	publisher  *testkit.RecordingPublisher
	logs       *logtest.Hook
	graph      *SocialGraph
	engagement *EngagementService
	feed       *FeedService
	recipes    *RecipeService
	inbox      *Inbox
	aggregator *Aggregator
	admin      *AdminService
}

func newHarness(t *testing.T, atomic bool) *harness {
	t.Helper()
	store := testkit.NewStore()
	tx := testkit.NewTransactor(store, atomic)
	publisher := &testkit.RecordingPublisher{}
	log, logs := logtest.NewNullLogger()

	engagement := NewEngagementService(store, store, tx, publisher, log)
	aggregator := NewAggregator(store, store, store)
	return &harness{
		store:      store,
		publisher:  publisher,
		logs:       logs,
		graph:      NewSocialGraph(store, store, tx, publisher, log),
		engagement: engagement,
		feed:       NewFeedService(store, store),
		recipes:    NewRecipeService(store, store),
		inbox:      NewInbox(store, store, store),
		aggregator: aggregator,
		admin:      NewAdminService(store, store, tx, engagement, aggregator, log),
	}
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
	if svcErr.Kind != kind {
		t.Fatalf("expected %s error, got %s (%q)", kind, svcErr.Kind, svcErr.Message)
	}
}

// assertErrorLogged checks that msg was logged at error level with the failure under "error"
func assertErrorLogged(t *testing.T, logs *logtest.Hook, msg, cause string) logrus.Fields {
	t.Helper()
	for _, entry := range logs.AllEntries() {
		if entry.Level != logrus.ErrorLevel || entry.Message != msg {
			continue
		}
		got, _ := entry.Data["error"].(string)
		if !strings.Contains(got, cause) {
			t.Fatalf("%q logged error %q, want it to mention %q", msg, got, cause)
		}
		return entry.Data
	}
	t.Fatalf("no error entry %q among %d log entries", msg, len(logs.AllEntries()))
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
