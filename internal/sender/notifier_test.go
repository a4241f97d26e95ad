package sender

import (
	"errors"
	"strings"
	"testing"
)

type recordingSender struct {
	url, message string
	err          error
}

func (r *recordingSender) Send(url, message string) error {
	r.url, r.message = url, message
	return r.err
}

func TestNotifierDisabled(t *testing.T) {
	rec := &recordingSender{}
	n := NewNotifier("", rec)
	if n.Enabled() || n.Notify(testSummary(), true) {
		t.Error("Notifier without a URL must be disabled")
	}
	if rec.url != "" {
		t.Error("Disabled notifier must not send")
	}
}

func TestNotifierSends(t *testing.T) {
	rec := &recordingSender{}
	n := NewNotifier("generic://example.com", rec)
	if !n.Notify(testSummary(), false) {
		t.Fatal("Expected notification to succeed")
	}
	if rec.url != "generic://example.com" {
		t.Errorf("Unexpected url %q", rec.url)
	}
	for _, want := range []string{"workstation", "report not delivered", "geolocation", testSummary().RunID} {
		if !strings.Contains(rec.message, want) {
			t.Errorf("Expected message to contain %q, got %q", want, rec.message)
		}
	}
}

func TestNotifierFailure(t *testing.T) {
	n := NewNotifier("generic://example.com", &recordingSender{err: errors.New("boom")})
	if n.Notify(testSummary(), true) {
		t.Error("Expected false when sending fails")
	}
}

func TestNotificationTextFailedSections(t *testing.T) {
	s := testSummary()
	s.FailedSections = []string{"geolocation", "network"}

	text := NotificationText(s, true)
	if !strings.HasSuffix(text, "failed sections: geolocation, network") {
		t.Errorf("Unexpected failed sections rendering: %q", text)
	}

	s.FailedSections = nil
	if text := NotificationText(s, true); !strings.HasSuffix(text, "failed sections: none") {
		t.Errorf("Expected 'none' without failures, got %q", text)
	}
}
