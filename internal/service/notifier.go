package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"barberbook/backend/config"
	"barberbook/backend/internal/model"
	"barberbook/backend/internal/policy"
)

// Notifier dispatches best-effort notifications for accepted clock records.
// Failures are the caller's to log; they must never fail the clock request.
type Notifier interface {
	Notify(ctx context.Context, staff *model.Staff, record *model.TimeRecord, decision policy.Decision, rule *model.ShiftRule) error
}

// Mailer sends one message. Abstracted so tests inject a fake instead of a
// live SMTP connection.
type Mailer interface {
	Send(ctx context.Context, to []string, subject string, body string, attachment []byte, attachmentName string) error
}

// mailNotifier emails the tenant admin about accepted clock events,
// attaching an iCalendar shift event for completed shifts when the tenant
// enabled calendar sync.
type mailNotifier struct {
	mailer Mailer
	logger *zap.Logger
}

// NewMailNotifier creates the production Notifier.
func NewMailNotifier(mailer Mailer, logger *zap.Logger) Notifier {
	return &mailNotifier{mailer: mailer, logger: logger}
}

func (n *mailNotifier) Notify(ctx context.Context, staff *model.Staff, record *model.TimeRecord, decision policy.Decision, rule *model.ShiftRule) error {
	if !rule.NotifyEmail || rule.AdminEmail == "" {
		return nil
	}

	verb := "clocked in"
	if record.Action == model.ActionClockOut {
		verb = "clocked out"
	}
	subject := fmt.Sprintf("[Barberbook] %s %s", staff.Name, verb)

	var body strings.Builder
	fmt.Fprintf(&body, "%s %s at %s.\r\n", staff.Name, verb, record.RecordedAt.UTC().Format(time.RFC3339))
	if decision.HasDuration {
		fmt.Fprintf(&body, "Shift duration: %.2f hours.\r\n", decision.DurationHours)
	}
	if decision.HasWeekly {
		fmt.Fprintf(&body, "Trailing 7-day total: %.2f hours.\r\n", decision.WeeklyHours)
	}

	var attachment []byte
	var attachmentName string
	if rule.NotifyCalendar && record.Action == model.ActionClockOut && decision.HasDuration {
		attachment = buildShiftEvent(staff, record, decision.DurationHours)
		attachmentName = "shift.ics"
	}

	return n.mailer.Send(ctx, []string{rule.AdminEmail}, subject, body.String(), attachment, attachmentName)
}

// buildShiftEvent renders a completed shift as an iCalendar VEVENT.
func buildShiftEvent(staff *model.Staff, record *model.TimeRecord, durationHours float64) []byte {
	end := record.RecordedAt.UTC()
	start := end.Add(-time.Duration(durationHours * float64(time.Hour)))

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Barberbook//Shift Clock//EN")

	event := cal.AddEvent(record.RecordID)
	event.SetCreatedTime(end)
	event.SetDtStampTime(end)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(fmt.Sprintf("Shift — %s", staff.Name))
	event.SetDescription(fmt.Sprintf("%.2f hour shift recorded by Barberbook", durationHours))

	return []byte(cal.Serialize())
}

// ── SMTP mailer ──

// smtpMailer delivers mail through the configured SMTP relay.
type smtpMailer struct {
	cfg *config.MailConfig
}

// NewSMTPMailer creates a Mailer over net/smtp.
func NewSMTPMailer(cfg *config.MailConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(_ context.Context, to []string, subject, body string, attachment []byte, attachmentName string) error {
	if m.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp host not configured")
	}

	msg := buildMIMEMessage(m.cfg.From, to, subject, body, attachment, attachmentName)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, to, msg)
}

// buildMIMEMessage assembles a plain-text message, multipart when an
// attachment is present.
func buildMIMEMessage(from string, to []string, subject, body string, attachment []byte, attachmentName string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(attachment) == 0 {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(body)
		return []byte(b.String())
	}

	const boundary = "barberbook-mail-boundary"
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	fmt.Fprintf(&b, "\r\n--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/calendar; charset=utf-8; method=PUBLISH\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", attachmentName)
	b.Write(attachment)
	fmt.Fprintf(&b, "\r\n--%s--\r\n", boundary)
	return []byte(b.String())
}
