// Package sequence implements last-request-wins bookkeeping for slow
// generative calls issued on behalf of one user and one widget.
package sequence

import (
	"errors"
	"sync"
)

var ErrStaleResponse = errors.New("response superseded by a newer request")

// Widget names a UI surface whose requests supersede each other.
type Widget string

const (
	WidgetAnalyzer   Widget = "analyzer"
	WidgetSimilar    Widget = "similar_quiz"
	WidgetDictionary Widget = "dictionary"
	WidgetTutor      Widget = "tutor"
	WidgetReading    Widget = "reading"
	WidgetWriting    Widget = "writing"
	WidgetGenerator  Widget = "generator"
	WidgetFeedback   Widget = "feedback"
)

type key struct {
	user   string
	widget Widget
}

// Ticket identifies one in-flight request.
type Ticket struct {
	key key
	seq uint64
}

func (t Ticket) Seq() uint64 { return t.seq }

type Tracker struct {
	mu     sync.Mutex
	latest map[key]uint64
}

func NewTracker() *Tracker {
	return &Tracker{latest: make(map[key]uint64)}
}

// Begin issues a ticket that supersedes every earlier ticket for the same
// user and widget.
func (t *Tracker) Begin(user string, widget Widget) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{user: user, widget: widget}
	t.latest[k]++
	return Ticket{key: k, seq: t.latest[k]}
}

// Current reports whether ticket is still the newest for its key.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[ticket.key] == ticket.seq
}

// Complete returns ErrStaleResponse when a newer request has started since
// ticket was issued. The caller must discard its result in that case.
func (t *Tracker) Complete(ticket Ticket) error {
	if !t.Current(ticket) {
		return ErrStaleResponse
	}
	return nil
}
