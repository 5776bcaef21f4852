package digest

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/library"
)

func intPtr(i int) *int { return &i }

func testDirectory(t *testing.T) *library.Directory {
	t.Helper()
	dir, err := library.NewDirectory([]library.Library{
		{ID: 9404, Name: "Route 9 Library", LocationID: intPtr(100)},
		{ID: 9395, Name: "Brandywine Hundred Library"},
	})
	require.NoError(t, err)
	return dir
}

type fakeRunner struct {
	mu     sync.Mutex
	report *finder.Report
	err    error
	dates  []string
	ids    [][]int
}

func (r *fakeRunner) Digest(_ context.Context, date string, ids []int) (*finder.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dates = append(r.dates, date)
	r.ids = append(r.ids, ids)
	if r.err != nil {
		return nil, r.err
	}
	rep := *r.report
	rep.Date = date
	return &rep, nil
}

func (r *fakeRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dates)
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func sampleReport(t *testing.T) *finder.Report {
	t.Helper()
	dir := testDirectory(t)
	route9, _ := dir.Resolve(9404)
	brandywine, _ := dir.Resolve(9395)

	return &finder.Report{
		Date: "2024-03-15",
		Events: []finder.CalendarEvent{{
			ID:          1,
			Title:       "Story Time",
			Start:       "2024-03-15T10:00:00-04:00",
			End:         "2024-03-15T11:00:00-04:00",
			Description: "<p>Songs &amp; rhymes</p>",
			Location:    "Children's Room",
			CalendarID:  9404,
		}},
		Rooms: []finder.LibraryRooms{{
			Library: route9,
			Rooms: []finder.RoomAvailability{
				{Room: "Study A (ID: 1)", Entries: []finder.BookingEntry{{
					Status: finder.StatusPending,
					From:   "09:00 AM",
					To:     "10:00 AM",
					Label:  "[PENDING] Study",
				}}},
				{Room: "Study B (ID: 2)", Entries: []finder.BookingEntry{}},
			},
		}},
		Skipped:    []library.Library{brandywine},
		Unresolved: []int{1234},
	}
}

func TestWriteEvents(t *testing.T) {
	dir := testDirectory(t)
	events := []finder.CalendarEvent{
		{
			Title:       "Story Time",
			Start:       "2024-03-15T10:00:00-04:00",
			End:         "2024-03-15T11:00:00-04:00",
			Description: "<b>Songs</b>",
			Location:    "Children's Room",
			CalendarID:  9404,
		},
		{
			Title:      "Mystery",
			Start:      "2024-03-15T13:00:00-04:00",
			End:        "2024-03-15T14:00:00-04:00",
			CalendarID: 1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, "2024-03-15", events, dir, 0))

	want := "Story Time at Route 9 Library\n" +
		"  Time: 10:00 AM to 11:00 AM\n" +
		"  Location: Children's Room\n" +
		"  Description: Songs\n" +
		"\n" +
		"Mystery at Unknown library\n" +
		"  Time: 01:00 PM to 02:00 PM\n" +
		"  Location: Unknown location\n" +
		"  Description: No description available\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteEvents_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, "2024-03-15", nil, testDirectory(t), 0))
	assert.Equal(t, "No events found on 2024-03-15\n", buf.String())
}

func TestWriteEvents_Truncates(t *testing.T) {
	events := []finder.CalendarEvent{{
		Title:       "Long",
		Description: strings.Repeat("a", 80),
		CalendarID:  9404,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, "2024-03-15", events, testDirectory(t), 0))
	assert.Contains(t, buf.String(), "Description: "+strings.Repeat("a", 77)+"<...>\n")
}

func TestWriteRooms(t *testing.T) {
	rooms := []finder.RoomAvailability{
		{Room: "A (ID: 1)", Entries: []finder.BookingEntry{{From: "09:00 AM", To: "10:00 AM", Label: "[CONFIRMED] Club"}}},
		{Room: "B (ID: 2)", Entries: []finder.BookingEntry{}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRooms(&buf, rooms))
	assert.Equal(t, "A (ID: 1)\n  09:00 AM - 10:00 AM [CONFIRMED] Club\nB (ID: 2)\n  free all day\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteRooms(&buf, nil))
	assert.Equal(t, "No rooms found\n", buf.String())
}

func TestWriteSpaces(t *testing.T) {
	edt := time.FixedZone("EDT", -4*3600)
	spaces := []finder.Space{
		{ID: 11, Name: "Study A", Slots: []finder.Slot{{
			From: time.Date(2024, 3, 15, 9, 0, 0, 0, edt),
			To:   time.Date(2024, 3, 15, 12, 30, 0, 0, edt),
		}}},
		{ID: 12, Name: "Study B"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSpaces(&buf, spaces))
	assert.Equal(t, "Study A (ID: 11)\n  free 09:00 AM - 12:30 PM\nStudy B (ID: 12)\n  no free slots\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteSpaces(&buf, nil))
	assert.Equal(t, "No spaces available\n", buf.String())
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport(t), testDirectory(t), 0))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Library digest for 2024-03-15\n"))
	assert.Contains(t, out, "Story Time at Route 9 Library\n")
	assert.Contains(t, out, "Description: Songs & rhymes\n")
	assert.Contains(t, out, "Route 9 Library\n  Study A (ID: 1)\n    09:00 AM - 10:00 AM [PENDING] Study\n")
	assert.Contains(t, out, "  Study B (ID: 2)\n    free all day\n")
	assert.Contains(t, out, "No room booking: Brandywine Hundred Library\n")
	assert.Contains(t, out, "Unknown library ids: 1234\n")
}

func TestWriteReport_WriteError(t *testing.T) {
	err := WriteReport(failingWriter{}, sampleReport(t), testDirectory(t), 0)
	assert.ErrorContains(t, err, "disk full")
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC)
}

func TestScheduler_RunOnce(t *testing.T) {
	runner := &fakeRunner{report: sampleReport(t)}
	var buf bytes.Buffer
	s := New(runner, testDirectory(t), &buf, Options{
		Libraries: []int{9404, 9395},
		Location:  time.UTC,
		now:       fixedNow,
	})

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"2024-03-15"}, runner.dates)
	assert.Equal(t, [][]int{{9404, 9395}}, runner.ids)
	assert.Contains(t, buf.String(), "Library digest for 2024-03-15")
}

func TestScheduler_TodayUsesLocation(t *testing.T) {
	// 07:00 UTC is still the previous day in Honolulu
	hst := time.FixedZone("HST", -10*3600)
	s := New(&fakeRunner{}, testDirectory(t), &bytes.Buffer{}, Options{Location: hst, now: fixedNow})
	assert.Equal(t, "2024-03-14", s.Today())
}

func TestScheduler_RunFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("upstream down")}
	var buf bytes.Buffer
	s := New(runner, testDirectory(t), &buf, Options{now: fixedNow})

	err := s.RunFor(context.Background(), "2024-03-15")
	assert.ErrorContains(t, err, "upstream down")
	assert.Empty(t, buf.String())
}

func TestScheduler_SinkFailure(t *testing.T) {
	s := New(&fakeRunner{report: sampleReport(t)}, testDirectory(t), failingWriter{}, Options{})

	err := s.RunFor(context.Background(), "2024-03-15")
	assert.ErrorContains(t, err, "failed to write digest")
}

func TestScheduler_ScheduledFailureIsLogged(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		want   string
	}{
		{name: "runner error", runner: &fakeRunner{err: errors.New("upstream down")}, want: "upstream down"},
		{name: "sink error", runner: &fakeRunner{report: sampleReport(t)}, want: "failed to write digest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			s := New(tt.runner, testDirectory(t), failingWriter{}, Options{
				Logger: slog.New(slog.NewTextHandler(&logs, nil)),
				now:    fixedNow,
			})

			s.runScheduled(context.Background())
			assert.Contains(t, logs.String(), "scheduled digest failed")
			assert.Contains(t, logs.String(), tt.want)
		})
	}
}

func TestScheduler_StartLogsFailedRun(t *testing.T) {
	runner := &fakeRunner{report: sampleReport(t)}
	logs := &syncBuffer{}
	s := New(runner, testDirectory(t), failingWriter{}, Options{
		Schedule: "@every 1s",
		Logger:   slog.New(slog.NewTextHandler(logs, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "scheduled digest failed")
	}, 5*time.Second, 50*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, logs.String(), "disk full")
}

func TestScheduler_StartRequiresSchedule(t *testing.T) {
	s := New(&fakeRunner{}, testDirectory(t), &bytes.Buffer{}, Options{})
	assert.ErrorIs(t, s.Start(context.Background()), ErrNoSchedule)
}

func TestScheduler_StartInvalidSchedule(t *testing.T) {
	s := New(&fakeRunner{}, testDirectory(t), &bytes.Buffer{}, Options{Schedule: "every morning"})
	assert.ErrorContains(t, s.Start(context.Background()), "invalid digest schedule")
}

func TestScheduler_StartStopsOnCancel(t *testing.T) {
	s := New(&fakeRunner{report: sampleReport(t)}, testDirectory(t), &bytes.Buffer{}, Options{Schedule: "@every 1h"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Start(ctx))
}

func TestScheduler_StartRunsOnSchedule(t *testing.T) {
	runner := &fakeRunner{report: sampleReport(t)}
	sink := &syncBuffer{}
	s := New(runner, testDirectory(t), sink, Options{Schedule: "@every 1s"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool { return runner.calls() > 0 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, sink.String(), "Library digest for")
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 7 * * *"))
	assert.NoError(t, ValidateSchedule("@daily"))
	assert.Error(t, ValidateSchedule("0 7 * *"))
}
