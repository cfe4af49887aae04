package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// slotIncrement is the step between candidate slots when searching for
// availability.
const slotIncrement = 15 * time.Minute

// Client is a stateless adapter over the Google Calendar API. It holds no
// credentials; every method takes a valid bearer token and builds the
// provider service for that single call. Methods perform no validation and
// no auth refresh, and surface provider errors unmodified (wrapped with
// %w) for the caller to classify.
type Client struct {
	opts []option.ClientOption
}

// NewClient creates a calendar adapter. Extra options are appended to
// every service construction; tests use option.WithEndpoint to point the
// adapter at a local server.
func NewClient(opts ...option.ClientOption) *Client {
	return &Client{opts: opts}
}

func (c *Client) service(ctx context.Context, token string) (*calendar.Service, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		})),
	}, c.opts...)

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

// ListEvents lists events in a calendar within a time range, expanded to
// single instances and ordered by start time.
func (c *Client) ListEvents(ctx context.Context, token string, params ListEventsParams) ([]EventSummary, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	call := svc.Events.List(params.CalendarID).
		Context(ctx).
		SingleEvents(true).
		OrderBy("startTime")
	if !params.TimeMin.IsZero() {
		call = call.TimeMin(params.TimeMin.Format(time.RFC3339))
	}
	if !params.TimeMax.IsZero() {
		call = call.TimeMax(params.TimeMax.Format(time.RFC3339))
	}
	if params.Query != "" {
		call = call.Q(params.Query)
	}
	if params.MaxResults > 0 {
		call = call.MaxResults(params.MaxResults)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(ctx context.Context, token, calendarID, eventID string) (*EventSummary, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	event, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	summary := toEventSummary(event)
	return &summary, nil
}

// CreateEvent creates a new calendar event, optionally attaching a Google
// Meet conference.
func (c *Client) CreateEvent(ctx context.Context, token, calendarID string, input EventInput) (*EventSummary, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	timeZone := input.TimeZone
	if timeZone == "" {
		timeZone = "UTC"
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: timeZone,
		},
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	call := svc.Events.Insert(calendarID, event).Context(ctx)
	if input.CreateMeetConference {
		call = call.ConferenceDataVersion(1)
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
			},
		}
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent patches an existing event. Only the provided fields change;
// the current event is read first so provider-side fields survive the
// update. This is the one fixed two-call sequence in the calendar adapter.
func (c *Client) UpdateEvent(ctx context.Context, token, calendarID, eventID string, input EventInput) (*EventSummary, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	existing, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}

	timeZone := input.TimeZone
	if timeZone == "" {
		timeZone = "UTC"
	}
	if !input.Start.IsZero() {
		existing.Start = &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: timeZone,
		}
	}
	if !input.End.IsZero() {
		existing.End = &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: timeZone,
		}
	}

	if len(input.Attendees) > 0 {
		existing.Attendees = nil
		for _, email := range input.Attendees {
			existing.Attendees = append(existing.Attendees, &calendar.EventAttendee{Email: email})
		}
	}

	updated, err := svc.Events.Update(calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent deletes a calendar event.
func (c *Client) DeleteEvent(ctx context.Context, token, calendarID, eventID string) error {
	svc, err := c.service(ctx, token)
	if err != nil {
		return err
	}

	if err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListCalendars lists all calendars visible to the authorized account.
func (c *Client) ListCalendars(ctx context.Context, token string) ([]CalendarInfo, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make([]CalendarInfo, 0, len(list.Items))
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}
	return calendars, nil
}

// QueryFreeBusy checks availability for calendars in a time range.
func (c *Client) QueryFreeBusy(ctx context.Context, token string, timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	result, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   items,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	infos := make([]FreeBusyInfo, 0, len(result.Calendars))
	for calID, cal := range result.Calendars {
		info := FreeBusyInfo{Calendar: calID}
		for _, busy := range cal.Busy {
			start, _ := time.Parse(time.RFC3339, busy.Start)
			end, _ := time.Parse(time.RFC3339, busy.End)
			info.Busy = append(info.Busy, TimeRange{Start: start, End: end})
		}
		for _, calErr := range cal.Errors {
			info.Errors = append(info.Errors, calErr.Reason)
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Calendar < infos[j].Calendar })

	return infos, nil
}

// FindAvailableSlots returns slots of the given duration where every
// queried attendee calendar is free, stepping through the window in
// 15-minute increments.
func (c *Client) FindAvailableSlots(ctx context.Context, token string, attendees []string, duration time.Duration, timeMin, timeMax time.Time) ([]AvailableSlot, error) {
	infos, err := c.QueryFreeBusy(ctx, token, timeMin, timeMax, attendees)
	if err != nil {
		return nil, err
	}

	var busyTimes []TimeRange
	for _, info := range infos {
		busyTimes = append(busyTimes, info.Busy...)
	}
	sort.Slice(busyTimes, func(i, j int) bool { return busyTimes[i].Start.Before(busyTimes[j].Start) })

	var slots []AvailableSlot
	current := timeMin
	for !current.Add(duration).After(timeMax) {
		slotEnd := current.Add(duration)

		free := true
		for _, busy := range busyTimes {
			if current.Before(busy.End) && slotEnd.After(busy.Start) {
				free = false
				// Jump to the end of the conflicting busy period.
				if busy.End.After(current) {
					current = busy.End
				}
				break
			}
		}

		if free {
			slots = append(slots, AvailableSlot{Start: current, End: slotEnd})
			current = current.Add(slotIncrement)
		}
	}

	return slots, nil
}
