package receiver

import (
	"context"
	"errors"
	"log"
)

// ErrNavigateUnsupported is returned by WindowContext.Navigate when the
// execution environment forbids direct navigation from the receiving
// agent. The receiver falls back to focus plus message passing.
var ErrNavigateUnsupported = errors.New("direct navigation not supported from receiving agent")

// Notification is what gets rendered on screen. Notifications sharing a
// Tag replace each other instead of piling up.
type Notification struct {
	Title string
	Body  string
	Icon  string
	Tag   string
	Data  Data
}

// Display renders notifications. Implementations must collapse by Tag:
// showing a notification with a tag already on screen replaces the old
// one.
type Display interface {
	Show(ctx context.Context, n Notification) error
}

// WindowContext is one open application context the receiver can route
// a click into.
type WindowContext interface {
	Navigate(ctx context.Context, url string) error
	Focus(ctx context.Context) error
	PostMessage(ctx context.Context, msg any) error
}

// Windows enumerates open application contexts and opens new ones.
type Windows interface {
	List(ctx context.Context) ([]WindowContext, error)
	Open(ctx context.Context, url string) error
}

// ClickReporter sends the click back for delivery analytics. Best
// effort; failures never block navigation.
type ClickReporter interface {
	ReportClick(ctx context.Context, notificationID string) error
}

// NavigateMessage is posted to a foreground context when direct
// navigation is unavailable.
type NavigateMessage struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Receiver is the always-running agent on the recipient's device. It
// turns delivered payloads into visible notifications and routes clicks
// back into the application.
type Receiver struct {
	display  Display
	windows  Windows
	reporter ClickReporter
}

func New(display Display, windows Windows, reporter ClickReporter) *Receiver {
	return &Receiver{display: display, windows: windows, reporter: reporter}
}

// OnPush handles a payload-received event. A payload that fails to
// decode is dropped with a log line; the push transport gives us no way
// to report back anyway.
func (r *Receiver) OnPush(ctx context.Context, raw []byte) error {
	payload, err := ParsePayload(raw)
	if err != nil {
		log.Printf("Dropping undecodable push payload: %v", err)
		return err
	}

	return r.display.Show(ctx, Notification{
		Title: payload.Title,
		Body:  payload.Body,
		Icon:  payload.Icon,
		Tag:   payload.Tag,
		Data:  payload.Data,
	})
}

// OnClick handles the interaction event for a previously shown
// notification. Routing order: reuse an open context via direct
// navigation, fall back to focus plus a navigate message, and only open
// a new context when none exists.
func (r *Receiver) OnClick(ctx context.Context, payload Payload) error {
	if r.reporter != nil && payload.NotificationID != "" {
		if err := r.reporter.ReportClick(ctx, payload.NotificationID); err != nil {
			log.Printf("Failed to report notification click: %v", err)
		}
	}

	url := payload.TargetURL()

	open, err := r.windows.List(ctx)
	if err != nil {
		log.Printf("Failed to enumerate open windows: %v", err)
		open = nil
	}

	if len(open) > 0 {
		win := open[0]
		err := win.Navigate(ctx, url)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNavigateUnsupported) {
			log.Printf("Window navigation failed: %v", err)
		}

		if focusErr := win.Focus(ctx); focusErr != nil {
			log.Printf("Window focus failed: %v", focusErr)
		}
		return win.PostMessage(ctx, NavigateMessage{Type: "navigate", URL: url})
	}

	return r.windows.Open(ctx, url)
}
