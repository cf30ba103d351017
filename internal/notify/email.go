package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"meetcal/internal/models"
)

// EmailNotifier sends booking confirmations via unauthenticated SMTP
// (Mailpit-compatible). Each confirmation goes to the guest with an
// attached calendar invite, plus a plain notice to the organizer.
type EmailNotifier struct {
	addr           string
	from           string
	organizerName  string
	organizerEmail string
	location       string
}

// NewEmailNotifier creates an email notifier delivering through host:port.
func NewEmailNotifier(host, port, from, organizerName, organizerEmail, location string) *EmailNotifier {
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@meetcal.local"
	}
	return &EmailNotifier{
		addr:           fmt.Sprintf("%s:%s", strings.TrimSpace(host), strings.TrimSpace(port)),
		from:           from,
		organizerName:  organizerName,
		organizerEmail: organizerEmail,
		location:       location,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

// SendConfirmation delivers the guest confirmation and the organizer notice.
func (e *EmailNotifier) SendConfirmation(_ context.Context, booking models.Booking) error {
	invite := e.buildInvite(booking)

	guestMsg := buildMIMEMessage(
		e.from,
		booking.GuestEmail,
		fmt.Sprintf("Booking confirmed: %s", booking.StartTime.Format("Mon, 2 Jan 2006 15:04")),
		e.guestBody(booking),
		invite,
	)
	if err := smtp.SendMail(e.addr, nil, e.from, []string{booking.GuestEmail}, []byte(guestMsg)); err != nil {
		return fmt.Errorf("guest email: %w", err)
	}

	if e.organizerEmail == "" {
		return nil
	}
	hostMsg := buildMIMEMessage(
		e.from,
		e.organizerEmail,
		fmt.Sprintf("New booking from %s", booking.GuestName),
		e.organizerBody(booking),
		invite,
	)
	if err := smtp.SendMail(e.addr, nil, e.from, []string{e.organizerEmail}, []byte(hostMsg)); err != nil {
		return fmt.Errorf("organizer email: %w", err)
	}
	return nil
}

func (e *EmailNotifier) buildInvite(booking models.Booking) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)

	event := cal.AddEvent(booking.Reference + "@meetcal")
	event.SetCreatedTime(booking.CreatedAt)
	event.SetDtStampTime(booking.CreatedAt)
	event.SetStartAt(booking.StartTime)
	event.SetEndAt(booking.EndTime)
	event.SetSummary(fmt.Sprintf("Meeting with %s", e.organizerName))
	if e.location != "" {
		event.SetLocation(e.location)
	}
	event.SetDescription(fmt.Sprintf("Booking reference: %s", booking.Reference))
	if e.organizerEmail != "" {
		event.SetOrganizer("mailto:"+e.organizerEmail, ics.WithCN(e.organizerName))
	}
	event.AddAttendee(booking.GuestEmail,
		ics.CalendarUserTypeIndividual,
		ics.ParticipationStatusNeedsAction,
		ics.ParticipationRoleReqParticipant,
		ics.WithRSVP(true))

	return cal.Serialize()
}

func (e *EmailNotifier) guestBody(booking models.Booking) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<p>Hi %s,</p>", booking.GuestName))
	b.WriteString(fmt.Sprintf("<p>Your meeting with %s is confirmed.</p>", e.organizerName))
	b.WriteString("<ul>")
	b.WriteString(fmt.Sprintf("<li>Date: %s</li>", booking.StartTime.Format("Monday, 2 January 2006")))
	b.WriteString(fmt.Sprintf("<li>Time: %s to %s</li>",
		booking.StartTime.Format("15:04"), booking.EndTime.Format("15:04")))
	if e.location != "" {
		b.WriteString(fmt.Sprintf("<li>Location: %s</li>", e.location))
	}
	b.WriteString(fmt.Sprintf("<li>Reference: %s</li>", booking.Reference))
	b.WriteString("</ul>")
	b.WriteString("<p>A calendar invite is attached.</p>")
	return b.String()
}

func (e *EmailNotifier) organizerBody(booking models.Booking) string {
	duration := booking.EndTime.Sub(booking.StartTime).Round(time.Minute)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<p>%s (%s) booked a %s meeting.</p>",
		booking.GuestName, booking.GuestEmail, duration))
	b.WriteString(fmt.Sprintf("<p>%s, %s to %s. Reference %s.</p>",
		booking.StartTime.Format("Monday, 2 January 2006"),
		booking.StartTime.Format("15:04"),
		booking.EndTime.Format("15:04"),
		booking.Reference))
	return b.String()
}

const mimeBoundary = "meetcal-invite"

// buildMIMEMessage assembles a multipart/mixed message with an HTML body
// and a text/calendar attachment.
func buildMIMEMessage(from, to, subject, htmlBody, invite string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", mimeBoundary))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", mimeBoundary))
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", mimeBoundary))
	b.WriteString("Content-Type: text/calendar; method=REQUEST; charset=utf-8\r\n")
	b.WriteString("Content-Disposition: attachment; filename=invite.ics\r\n\r\n")
	b.WriteString(invite)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s--\r\n", mimeBoundary))
	return b.String()
}
