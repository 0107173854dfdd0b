package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/storage"
	"github.com/google/uuid"
)

const icsTimeLayout = "20060102T150405Z"

// CalendarInvite is a rendered single-event iCalendar object for a
// confirmed match.
type CalendarInvite struct {
	UID      string `json:"uid"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
	URL      string `json:"url,omitempty"`
}

type CalendarService interface {
	// Render refuses any match that is not confirmed with a scheduled time.
	Render(match *models.Match) (*CalendarInvite, error)
	// RenderAndPublish additionally uploads the .ics to object storage and
	// fills in a public URL. Requires an uploader to be configured.
	RenderAndPublish(ctx context.Context, match *models.Match) (*CalendarInvite, error)
}

type calendarService struct {
	uploader storage.FileUploader
	now      func() time.Time
}

func NewCalendarService(uploader storage.FileUploader) CalendarService {
	return &calendarService{uploader: uploader, now: time.Now}
}

func (s *calendarService) Render(match *models.Match) (*CalendarInvite, error) {
	if match.Status != models.MatchStatusConfirmed || match.ScheduledAt == nil {
		return nil, ErrMatchNotSchedulable
	}

	uid := uuid.NewString()
	summary := fmt.Sprintf("League match, week %d", match.WeekIndex+1)
	location := ""
	if match.ScheduledVenue != nil {
		location = *match.ScheduledVenue
	}

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//courtside//league-system//EN\r\n")
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(&b, "UID:%s\r\n", uid)
	fmt.Fprintf(&b, "DTSTAMP:%s\r\n", s.now().UTC().Format(icsTimeLayout))
	fmt.Fprintf(&b, "DTSTART:%s\r\n", match.ScheduledAt.UTC().Format(icsTimeLayout))
	fmt.Fprintf(&b, "SUMMARY:%s\r\n", escapeICS(summary))
	if location != "" {
		fmt.Fprintf(&b, "LOCATION:%s\r\n", escapeICS(location))
	}
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")

	return &CalendarInvite{
		UID:      uid,
		Filename: fmt.Sprintf("match-%d.ics", match.ID),
		Content:  b.String(),
	}, nil
}

func (s *calendarService) RenderAndPublish(ctx context.Context, match *models.Match) (*CalendarInvite, error) {
	invite, err := s.Render(match)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return invite, nil
	}

	key := fmt.Sprintf("calendars/%s", invite.Filename)
	result, err := s.uploader.Upload(ctx, key, "text/calendar", strings.NewReader(invite.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to publish calendar invite for match %d: %w", match.ID, err)
	}
	invite.URL = result.Location
	return invite, nil
}

// escapeICS escapes the characters RFC 5545 requires in text values.
func escapeICS(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}
