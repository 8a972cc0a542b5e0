package receiver

import (
	"context"
	"errors"
	"testing"
)

type mockDisplay struct {
	shown []Notification
}

func (d *mockDisplay) Show(ctx context.Context, n Notification) error {
	// Collapse by tag, like the platform notification tray does.
	if n.Tag != "" {
		for i, existing := range d.shown {
			if existing.Tag == n.Tag {
				d.shown[i] = n
				return nil
			}
		}
	}
	d.shown = append(d.shown, n)
	return nil
}

type mockWindow struct {
	url         string
	navigateErr error
	focused     bool
	posted      []any
}

func (w *mockWindow) Navigate(ctx context.Context, url string) error {
	if w.navigateErr != nil {
		return w.navigateErr
	}
	w.url = url
	return nil
}

func (w *mockWindow) Focus(ctx context.Context) error {
	w.focused = true
	return nil
}

func (w *mockWindow) PostMessage(ctx context.Context, msg any) error {
	w.posted = append(w.posted, msg)
	return nil
}

type mockWindows struct {
	open   []WindowContext
	opened []string
}

func (w *mockWindows) List(ctx context.Context) ([]WindowContext, error) {
	return w.open, nil
}

func (w *mockWindows) Open(ctx context.Context, url string) error {
	w.opened = append(w.opened, url)
	return nil
}

type mockReporter struct {
	clicks []string
}

func (r *mockReporter) ReportClick(ctx context.Context, notificationID string) error {
	r.clicks = append(r.clicks, notificationID)
	return nil
}

func TestOnPushRendersPayload(t *testing.T) {
	display := &mockDisplay{}
	r := New(display, &mockWindows{}, nil)

	raw := []byte(`{"title":"Nova mensagem","body":"Ana escreveu","tag":"discussion-1","data":{"url":"/discussions/1"}}`)
	if err := r.OnPush(context.Background(), raw); err != nil {
		t.Fatalf("OnPush: %v", err)
	}

	if len(display.shown) != 1 {
		t.Fatalf("shown = %d, want 1", len(display.shown))
	}
	n := display.shown[0]
	if n.Title != "Nova mensagem" || n.Tag != "discussion-1" {
		t.Errorf("rendered notification = %+v", n)
	}
	if n.Data.URL != "/discussions/1" {
		t.Errorf("data url = %q, want /discussions/1", n.Data.URL)
	}
}

func TestOnPushSharedTagCollapses(t *testing.T) {
	display := &mockDisplay{}
	r := New(display, &mockWindows{}, nil)

	first := []byte(`{"title":"Pensando em você","body":"primeira","tag":"ping"}`)
	second := []byte(`{"title":"De novo!","body":"segunda","tag":"ping"}`)
	if err := r.OnPush(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	if err := r.OnPush(context.Background(), second); err != nil {
		t.Fatal(err)
	}

	if len(display.shown) != 1 {
		t.Fatalf("shown = %d, want 1 (same tag replaces)", len(display.shown))
	}
	if display.shown[0].Body != "segunda" {
		t.Errorf("collapsed notification shows %q, want the latest", display.shown[0].Body)
	}
}

func TestOnPushRejectsGarbage(t *testing.T) {
	r := New(&mockDisplay{}, &mockWindows{}, nil)
	if err := r.OnPush(context.Background(), []byte("not json")); err == nil {
		t.Error("garbage payload should error")
	}
}

func TestParsePayloadDataForms(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"Object form", `{"title":"t","data":{"url":"/discussions/3"}}`, "/discussions/3"},
		{"Bare string form", `{"title":"t","data":"/discussions/3"}`, "/discussions/3"},
		{"Missing data falls back to root", `{"title":"t"}`, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload([]byte(tt.frame))
			if err != nil {
				t.Fatalf("ParsePayload: %v", err)
			}
			if got := p.TargetURL(); got != tt.want {
				t.Errorf("TargetURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOnClickNavigatesOpenWindow(t *testing.T) {
	win := &mockWindow{}
	windows := &mockWindows{open: []WindowContext{win}}
	r := New(&mockDisplay{}, windows, nil)

	payload := Payload{Data: Data{URL: "/discussions/5"}}
	if err := r.OnClick(context.Background(), payload); err != nil {
		t.Fatalf("OnClick: %v", err)
	}

	if win.url != "/discussions/5" {
		t.Errorf("window navigated to %q, want /discussions/5", win.url)
	}
	if len(windows.opened) != 0 {
		t.Error("no new window should open when one exists")
	}
}

func TestOnClickFallsBackToFocusAndMessage(t *testing.T) {
	win := &mockWindow{navigateErr: ErrNavigateUnsupported}
	windows := &mockWindows{open: []WindowContext{win}}
	r := New(&mockDisplay{}, windows, nil)

	payload := Payload{Data: Data{URL: "/discussions/5"}}
	if err := r.OnClick(context.Background(), payload); err != nil {
		t.Fatalf("OnClick: %v", err)
	}

	if !win.focused {
		t.Error("window should be focused when direct navigation is unsupported")
	}
	if len(win.posted) != 1 {
		t.Fatalf("posted messages = %d, want 1", len(win.posted))
	}
	msg, ok := win.posted[0].(NavigateMessage)
	if !ok || msg.Type != "navigate" || msg.URL != "/discussions/5" {
		t.Errorf("posted message = %+v, want a navigate instruction", win.posted[0])
	}
}

func TestOnClickOpensWindowWhenNoneExists(t *testing.T) {
	windows := &mockWindows{}
	r := New(&mockDisplay{}, windows, nil)

	payload := Payload{Data: Data{URL: "/discussions/5"}}
	if err := r.OnClick(context.Background(), payload); err != nil {
		t.Fatalf("OnClick: %v", err)
	}

	if len(windows.opened) != 1 || windows.opened[0] != "/discussions/5" {
		t.Errorf("opened = %v, want one window at the target", windows.opened)
	}
}

func TestOnClickReportsClick(t *testing.T) {
	reporter := &mockReporter{}
	r := New(&mockDisplay{}, &mockWindows{}, reporter)

	payload := Payload{NotificationID: "n9", Data: Data{URL: "/"}}
	if err := r.OnClick(context.Background(), payload); err != nil {
		t.Fatalf("OnClick: %v", err)
	}

	if len(reporter.clicks) != 1 || reporter.clicks[0] != "n9" {
		t.Errorf("reported clicks = %v, want [n9]", reporter.clicks)
	}
}

func TestOnClickWithoutNotificationIDSkipsReport(t *testing.T) {
	reporter := &mockReporter{}
	r := New(&mockDisplay{}, &mockWindows{}, reporter)

	if err := r.OnClick(context.Background(), Payload{}); err != nil {
		t.Fatalf("OnClick: %v", err)
	}
	if len(reporter.clicks) != 0 {
		t.Errorf("clicks reported without an id: %v", reporter.clicks)
	}
}

func TestOnClickTransientNavigateErrorStillFallsBack(t *testing.T) {
	win := &mockWindow{navigateErr: errors.New("window detached")}
	windows := &mockWindows{open: []WindowContext{win}}
	r := New(&mockDisplay{}, windows, nil)

	if err := r.OnClick(context.Background(), Payload{Data: Data{URL: "/x"}}); err != nil {
		t.Fatalf("OnClick: %v", err)
	}
	if !win.focused || len(win.posted) != 1 {
		t.Error("any navigate failure should fall back to focus plus message")
	}
}
