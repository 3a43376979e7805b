package logger

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestLogError(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	fields := logrus.Fields{"recipe_id": "r1"}

	LogError(log, "cascade failed", errors.New("timeout"), fields)

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel || entry.Message != "cascade failed" {
		t.Fatalf("entry %+v", entry)
	}
	if entry.Data["error"] != "timeout" || entry.Data["recipe_id"] != "r1" {
		t.Fatalf("data %v", entry.Data)
	}
	if _, leaked := fields["error"]; leaked {
		t.Fatal("caller fields must not be modified")
	}

	LogError(log, "no cause", nil, nil)
	if _, ok := hook.LastEntry().Data["error"]; ok {
		t.Fatal("nil error must not add an error field")
	}
}
