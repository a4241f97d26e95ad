package sender

import (
	"fmt"
	"strings"

	"github.com/nicholas-fedor/shoutrrr"

	"github.com/ilexum-group/sysreport/internal/utils"
)

// NotifySender abstracts message dispatch so the notifier can be tested
// without hitting real services.
type NotifySender interface {
	Send(url, message string) error
}

// ShoutrrrSender dispatches via the Shoutrrr library
type ShoutrrrSender struct{}

// Send implements NotifySender
func (ShoutrrrSender) Send(url, message string) error {
	return shoutrrr.Send(url, message)
}

// Notifier posts a one-paragraph run summary to a Shoutrrr URL
type Notifier struct {
	url    string
	sender NotifySender
}

// NewNotifier creates a Notifier. An empty url disables it.
func NewNotifier(url string, sender NotifySender) *Notifier {
	if sender == nil {
		sender = ShoutrrrSender{}
	}
	return &Notifier{url: url, sender: sender}
}

// Enabled reports whether a notification URL is configured
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// Notify posts the summary. It is best effort: failures are logged and false returned.
func (n *Notifier) Notify(summary Summary, delivered bool) (ok bool) {
	if !n.Enabled() {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Notification panicked", map[string]string{"error": fmt.Sprint(r)})
			ok = false
		}
	}()

	if err := n.sender.Send(n.url, NotificationText(summary, delivered)); err != nil {
		utils.LogWarn("Failed to send notification", map[string]string{"error": err.Error()})
		return false
	}
	utils.LogInfo("Notification sent", nil)
	return true
}

// NotificationText renders the summary as a single paragraph
func NotificationText(s Summary, delivered bool) string {
	status := "report not delivered"
	if delivered {
		status = "report delivered"
	}
	failed := "none"
	if len(s.FailedSections) > 0 {
		failed = strings.Join(s.FailedSections, ", ")
	}
	return fmt.Sprintf("sysreport run %s on %s (%s, %s) at %s: %s; failed sections: %s",
		s.RunID, s.Hostname, s.Username, s.ExternalIP, s.Generated.Format(timeLayout), status, failed)
}
