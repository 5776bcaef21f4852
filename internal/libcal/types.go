package libcal

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/teemow/libfinder/internal/finder"
)

// eventsResponse is the body of GET /events.
type eventsResponse struct {
	Events []apiEvent `json:"events"`
}

type apiEvent struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	Description string      `json:"description"`
	Location    namedObject `json:"location"`
	Calendar    idObject    `json:"calendar"`
	URL         urlObject   `json:"url"`
}

// namedObject decodes {"name": ...}. Any other JSON shape decodes to the zero value,
// since LibCal sends "" or [] for events without a location.
type namedObject struct {
	Name string `json:"name"`
}

func (n *namedObject) UnmarshalJSON(data []byte) error {
	type plain namedObject
	if !isObject(data) {
		*n = namedObject{}
		return nil
	}
	return json.Unmarshal(data, (*plain)(n))
}

type idObject struct {
	ID int `json:"id"`
}

func (o *idObject) UnmarshalJSON(data []byte) error {
	type plain idObject
	if !isObject(data) {
		*o = idObject{}
		return nil
	}
	return json.Unmarshal(data, (*plain)(o))
}

type urlObject struct {
	Public string `json:"public"`
}

func (u *urlObject) UnmarshalJSON(data []byte) error {
	type plain urlObject
	if !isObject(data) {
		*u = urlObject{}
		return nil
	}
	return json.Unmarshal(data, (*plain)(u))
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

func (e apiEvent) toEvent() finder.CalendarEvent {
	return finder.CalendarEvent{
		ID:          e.ID,
		Title:       e.Title,
		Start:       e.Start,
		End:         e.End,
		Description: e.Description,
		Location:    e.Location.Name,
		CalendarID:  e.Calendar.ID,
		URL:         e.URL.Public,
	}
}

// apiBooking is one element of GET /space/bookings.
type apiBooking struct {
	EID      int    `json:"eid"`
	ItemName string `json:"item_name"`
	Status   string `json:"status"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
	Nickname string `json:"nickname"`
}

func (b apiBooking) toBooking() finder.Booking {
	return finder.Booking{
		ItemName: b.ItemName,
		EID:      b.EID,
		Status:   b.Status,
		From:     b.FromDate,
		To:       b.ToDate,
		Nickname: b.Nickname,
	}
}

// apiSpace is one element of GET /space/items/{lid}?availability=date.
type apiSpace struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Availability []apiSlot `json:"availability"`
}

type apiSlot struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// toSpace converts the wire record. Slots whose bounds are not RFC 3339 timestamps
// are dropped.
func (s apiSpace) toSpace() finder.Space {
	sp := finder.Space{ID: s.ID, Name: s.Name}
	for _, a := range s.Availability {
		from, err := time.Parse(time.RFC3339, a.From)
		if err != nil {
			continue
		}
		to, err := time.Parse(time.RFC3339, a.To)
		if err != nil {
			continue
		}
		sp.Slots = append(sp.Slots, finder.Slot{From: from, To: to})
	}
	return sp
}
