package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Stage", KeyStage, "outline", Stage("outline")},
		{"Step", KeyStep, "title_generated", Step("title_generated")},
		{"Topic", KeyTopic, "人工智能", Topic("人工智能")},
		{"DocType", KeyDocType, "slide", DocType("slide")},
		{"Section", KeySection, "基础概念", Section("基础概念")},
		{"RecordID", KeyRecordID, "abc", RecordID("abc")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Path", KeyPath, "/healthz", Path("/healthz")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestStatusIsInt(t *testing.T) {
	a := Status(404)
	if a.Value.Kind() != slog.KindInt64 {
		t.Fatalf("expected int64 kind, got %v", a.Value.Kind())
	}
}

func TestErrorNil(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("expected empty value for nil error, got %q", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}
