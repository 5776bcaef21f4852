package finder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/libfinder/internal/library"
)

// fakeUpstream serves canned data and records the ids it was asked for.
type fakeUpstream struct {
	events   map[int][]CalendarEvent
	bookings map[int][]Booking
	spaces   map[int][]Space

	eventErrs   map[int]error
	bookingErr  error
	spaceErr    error
	eventCalls  []int
	bookingHits []int
	spaceHits   []int
}

func (u *fakeUpstream) Events(_ context.Context, calendarID int, _ string) ([]CalendarEvent, error) {
	u.eventCalls = append(u.eventCalls, calendarID)
	if err := u.eventErrs[calendarID]; err != nil {
		return nil, err
	}
	return u.events[calendarID], nil
}

func (u *fakeUpstream) Bookings(_ context.Context, locationID int, _ string) ([]Booking, error) {
	u.bookingHits = append(u.bookingHits, locationID)
	if u.bookingErr != nil {
		return nil, u.bookingErr
	}
	return u.bookings[locationID], nil
}

func (u *fakeUpstream) Spaces(_ context.Context, locationID int, _ string) ([]Space, error) {
	u.spaceHits = append(u.spaceHits, locationID)
	if u.spaceErr != nil {
		return nil, u.spaceErr
	}
	return u.spaces[locationID], nil
}

func intPtr(v int) *int { return &v }

func testDirectory(t *testing.T) *library.Directory {
	t.Helper()
	dir, err := library.NewDirectory([]library.Library{
		{ID: 9404, Name: "Appoquinimink Public Library", LocationID: intPtr(100)},
		{ID: 9395, Name: "Bear Public Library"},
		{ID: 9397, Name: "Brandywine Hundred Library", LocationID: intPtr(200)},
	})
	require.NoError(t, err)
	return dir
}

var errUpstream = errors.New("upstream returned 500")

func TestNew_NilLogger(t *testing.T) {
	f := New(&fakeUpstream{}, testDirectory(t), nil)
	require.NotNil(t, f)
	assert.NotNil(t, f.logger)
	assert.Equal(t, 3, f.Directory().Len())
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no location", ErrNoBookingLocation, false},
		{"wrapped no location", errors.Join(errors.New("ctx"), ErrNoBookingLocation), false},
		{"unknown library", library.ErrUnknownLibrary, false},
		{"transport", errUpstream, true},
		{"invalid date", ErrInvalidDate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestDigest(t *testing.T) {
	up := &fakeUpstream{
		events: map[int][]CalendarEvent{
			9404: {{ID: 1, Title: "Story Time", Start: "2024-03-15T10:00:00-04:00", End: "2024-03-15T11:00:00-04:00", CalendarID: 9404}},
		},
		spaces: map[int][]Space{
			100: {{ID: 1, Name: "Study Room"}},
			200: {{ID: 5, Name: "Board Room"}},
		},
	}
	f := New(up, testDirectory(t), nil)

	report, err := f.Digest(context.Background(), "2024-03-15", nil)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15", report.Date)
	assert.Equal(t, []int{9404, 9395, 9397}, up.eventCalls)
	require.Len(t, report.Events, 1)
	assert.Equal(t, "Story Time", report.Events[0].Title)

	require.Len(t, report.Rooms, 2)
	assert.Equal(t, 9404, report.Rooms[0].Library.ID)
	assert.Equal(t, "Study Room (ID: 1)", report.Rooms[0].Rooms[0].Room)
	assert.True(t, report.Rooms[0].Rooms[0].Free())
	assert.Equal(t, 9397, report.Rooms[1].Library.ID)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "Bear Public Library", report.Skipped[0].Name)
	assert.Empty(t, report.Unresolved)
}

func TestDigest_Unresolved(t *testing.T) {
	up := &fakeUpstream{}
	f := New(up, testDirectory(t), nil)

	report, err := f.Digest(context.Background(), "2024-03-15", []int{9395, 42})
	require.NoError(t, err)
	assert.Equal(t, []int{42}, report.Unresolved)
	assert.Len(t, report.Skipped, 1)
	assert.Empty(t, report.Rooms)
}

func TestDigest_TransportErrorAborts(t *testing.T) {
	up := &fakeUpstream{bookingErr: errUpstream}
	f := New(up, testDirectory(t), nil)

	report, err := f.Digest(context.Background(), "2024-03-15", nil)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, errUpstream)
	assert.True(t, IsFatal(err))
	assert.Equal(t, []int{100}, up.bookingHits)
}
