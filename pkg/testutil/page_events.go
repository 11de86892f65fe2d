package testutil

import (
	"context"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/thesyncim/browsertest/pkg/events"
)

// Page event names emitted by PageEvents.
const (
	EventLoad             = "load"
	EventDOMContentLoaded = "domcontentloaded"
	EventFrameAttached    = "frameattached"
	EventFrameDetached    = "framedetached"
	EventFrameNavigated   = "framenavigated"
	EventConsole          = "console"
	EventRequest          = "request"
)

// PageEvent is the payload of every page event. Fields that do not apply to
// an event are left empty.
type PageEvent struct {
	Name          string
	FrameID       string
	ParentFrameID string
	FrameName     string
	URL           string

	// ConsoleType is the console method ("log", "warning", ...) for console events.
	ConsoleType string

	// Text is the space-joined console arguments for console events.
	Text string
}

// PageEventSource re-emits CDP events of one page on an events.Emitter.
type PageEventSource struct {
	*events.Emitter[PageEvent]

	cancel context.CancelFunc
	done   chan struct{}
}

// PageEvents starts forwarding page lifecycle, frame, console and request
// events until Close is called or the page context ends.
func PageEvents(page *rod.Page) *PageEventSource {
	ctx, cancel := context.WithCancel(page.GetContext())
	em := events.NewEmitter[PageEvent]()

	wait := page.Context(ctx).EachEvent(
		func(e *proto.PageLoadEventFired) {
			em.Emit(EventLoad, PageEvent{Name: EventLoad})
		},
		func(e *proto.PageDomContentEventFired) {
			em.Emit(EventDOMContentLoaded, PageEvent{Name: EventDOMContentLoaded})
		},
		func(e *proto.PageFrameAttached) {
			em.Emit(EventFrameAttached, PageEvent{
				Name:          EventFrameAttached,
				FrameID:       string(e.FrameID),
				ParentFrameID: string(e.ParentFrameID),
			})
		},
		func(e *proto.PageFrameDetached) {
			em.Emit(EventFrameDetached, PageEvent{
				Name:    EventFrameDetached,
				FrameID: string(e.FrameID),
			})
		},
		func(e *proto.PageFrameNavigated) {
			if e.Frame == nil {
				return
			}
			em.Emit(EventFrameNavigated, PageEvent{
				Name:          EventFrameNavigated,
				FrameID:       string(e.Frame.ID),
				ParentFrameID: string(e.Frame.ParentID),
				FrameName:     e.Frame.Name,
				URL:           e.Frame.URL,
			})
		},
		func(e *proto.RuntimeConsoleAPICalled) {
			em.Emit(EventConsole, PageEvent{
				Name:        EventConsole,
				ConsoleType: string(e.Type),
				Text:        consoleText(e.Args),
			})
		},
		func(e *proto.NetworkRequestWillBeSent) {
			if e.Request == nil {
				return
			}
			em.Emit(EventRequest, PageEvent{
				Name:    EventRequest,
				FrameID: string(e.FrameID),
				URL:     e.Request.URL,
			})
		},
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	return &PageEventSource{Emitter: em, cancel: cancel, done: done}
}

// Close stops forwarding and detaches every listener.
func (s *PageEventSource) Close() {
	s.cancel()
	<-s.done
	s.RemoveAll()
}

func consoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		if !arg.Value.Nil() {
			parts = append(parts, arg.Value.String())
			continue
		}
		parts = append(parts, arg.Description)
	}
	return strings.Join(parts, " ")
}
