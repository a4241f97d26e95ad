// Package sender delivers the report by email and posts run summaries
package sender

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/ilexum-group/sysreport/internal/config"
	"github.com/ilexum-group/sysreport/internal/utils"
	"github.com/ilexum-group/sysreport/pkg/models"
)

// ErrNotConfigured is returned when no SMTP host or recipient is configured
var ErrNotConfigured = errors.New("mail delivery not configured")

const timeLayout = "2006-01-02 15:04:05"

// Summary is the short description of a run used in the mail body and notifications
type Summary struct {
	RunID          string
	Generated      time.Time
	Hostname       string
	Username       string
	ExternalIP     string
	FailedSections []string
}

// NewSummary extracts a Summary from report
func NewSummary(runID string, generated time.Time, report models.Report) Summary {
	s := Summary{
		RunID:      runID,
		Generated:  generated,
		Hostname:   models.NotAvailable,
		Username:   models.NotAvailable,
		ExternalIP: models.NotAvailable,
	}
	if !report.System.Failed() {
		s.Hostname = orNA(report.System.Value.Hostname)
		s.Username = orNA(report.System.Value.Username)
	}
	if !report.Network.Failed() {
		s.ExternalIP = orNA(report.Network.Value.ExternalIP)
	}
	for name := range report.SectionErrors() {
		s.FailedSections = append(s.FailedSections, name)
	}
	sort.Strings(s.FailedSections)
	return s
}

// Text renders the summary as plain text
func (s Summary) Text() string {
	failed := "none"
	if len(s.FailedSections) > 0 {
		failed = strings.Join(s.FailedSections, ", ")
	}

	var b strings.Builder
	b.WriteString("System information report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", s.Generated.Format(timeLayout))
	fmt.Fprintf(&b, "Hostname: %s\n", s.Hostname)
	fmt.Fprintf(&b, "User: %s\n", s.Username)
	fmt.Fprintf(&b, "External IP: %s\n", s.ExternalIP)
	fmt.Fprintf(&b, "Run ID: %s\n", s.RunID)
	fmt.Fprintf(&b, "Failed sections: %s\n", failed)
	return b.String()
}

// Mailer sends built messages. *mail.Client satisfies it.
type Mailer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// BuildMessage creates the report email with the JSON file attached
func BuildMessage(cfg *config.Config, summary Summary, reportPath string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(cfg.Sender()); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(cfg.MailTo...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("System Info Report - " + summary.Generated.Format(timeLayout))
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, summary.Text())
	msg.AttachFile(reportPath,
		mail.WithFileName(filepath.Base(reportPath)),
		mail.WithFileContentType(mail.ContentType("application/json")),
	)
	return msg, nil
}

// NewMailClient creates a go-mail client for the configured SMTP server
func NewMailClient(cfg *config.Config) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(cfg.SMTPTimeout),
	}

	switch cfg.SMTPSecurity {
	case config.SecuritySSL:
		opts = append(opts, mail.WithSSL())
	case config.SecurityNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return client, nil
}

// Transmitter emails report files
type Transmitter struct {
	cfg    *config.Config
	mailer Mailer
}

// NewTransmitter creates a Transmitter. When mailer is nil a go-mail client is
// built from cfg on first use.
func NewTransmitter(cfg *config.Config, mailer Mailer) *Transmitter {
	return &Transmitter{cfg: cfg, mailer: mailer}
}

// Send delivers the report at reportPath. The whole SMTP session is bounded
// by the configured timeout.
func (t *Transmitter) Send(ctx context.Context, summary Summary, reportPath string) error {
	if !t.cfg.MailConfigured() {
		return ErrNotConfigured
	}

	msg, err := BuildMessage(t.cfg, summary, reportPath)
	if err != nil {
		return err
	}

	mailer := t.mailer
	if mailer == nil {
		client, err := NewMailClient(t.cfg)
		if err != nil {
			return err
		}
		mailer = client
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.SMTPTimeout)
	defer cancel()

	utils.LogInfo("Sending report", map[string]string{
		"smtp_host":  t.cfg.SMTPHost,
		"recipients": fmt.Sprint(len(t.cfg.MailTo)),
	})
	if err := mailer.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	return nil
}

// Deliver calls Send and reports success. Failures, including panics, are
// logged and never propagated.
func (t *Transmitter) Deliver(ctx context.Context, summary Summary, reportPath string) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Report delivery panicked", map[string]string{"error": fmt.Sprint(r)})
			sent = false
		}
	}()

	if err := t.Send(ctx, summary, reportPath); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			utils.LogWarn("Mail delivery skipped", map[string]string{"reason": err.Error()})
			return false
		}
		utils.LogError("Failed to send report", map[string]string{"error": err.Error()})
		return false
	}

	utils.LogInfo("Report sent successfully", map[string]string{"status": "completed"})
	return true
}

func orNA(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}
