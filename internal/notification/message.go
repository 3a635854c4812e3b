package notification

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const clockLayout = "2006-01-02 15:04"

var subjects = map[Kind]string{
	KindCreated:   "Reservation received",
	KindApproved:  "Reservation approved",
	KindRejected:  "Reservation rejected",
	KindCancelled: "Reservation cancelled",
}

var leads = map[Kind]string{
	KindCreated:   "Your reservation was received.",
	KindApproved:  "Your reservation was approved.",
	KindRejected:  "Your reservation was rejected.",
	KindCancelled: "Your reservation was cancelled.",
}

// Mail is a composed plain-text email.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// ComposeMail renders the email for e with times in loc.
func ComposeMail(e Event, loc *time.Location) Mail {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello, %s!\n\n", e.Requester)
	fmt.Fprintf(&b, "%s\n\n", leads[e.Kind])
	fmt.Fprintf(&b, "Resource: %s\n", e.ResourceName)
	fmt.Fprintf(&b, "Start: %s\n", e.Start.In(loc).Format(clockLayout))
	fmt.Fprintf(&b, "End: %s\n", e.End.In(loc).Format(clockLayout))
	fmt.Fprintf(&b, "Status: %s\n", e.Status.Label())

	return Mail{To: e.Email, Subject: subjects[e.Kind], Body: b.String()}
}

// BroadcastText is the one-line summary shown to live administrators.
func BroadcastText(e Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	start := e.Start.In(loc).Format(clockLayout)
	switch e.Kind {
	case KindCreated:
		return fmt.Sprintf("New reservation: %s booked %s at %s (%s)", e.Requester, e.ResourceName, start, e.Status.Label())
	default:
		return fmt.Sprintf("Reservation %s: %s, %s at %s", e.Kind, e.Requester, e.ResourceName, start)
	}
}

type broadcastPayload struct {
	Message string `json:"message"`
}

func encodeBroadcast(text string) ([]byte, error) {
	return json.Marshal(broadcastPayload{Message: text})
}
