package notify

import (
	"errors"
	"testing"
	"time"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPingLimiterAllowsFreshDay(t *testing.T) {
	repo := NewMockPendingNotificationRepository()
	limiter := NewPingLimiter(repo)
	limiter.now = fixedNow(time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))

	status, err := limiter.Status(1)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Allowed {
		t.Error("fresh day should allow a ping")
	}
	if status.RemainingToday != DailyPingQuota {
		t.Errorf("remaining = %d, want %d", status.RemainingToday, DailyPingQuota)
	}
}

func TestPingLimiterQuotaSequence(t *testing.T) {
	repo := NewMockPendingNotificationRepository()
	limiter := NewPingLimiter(repo)

	// Send every 2h01m starting just after midnight: ten sends fit in
	// one calendar day with the cooldown satisfied between them.
	day := time.Date(2025, 3, 10, 0, 10, 0, 0, time.Local)
	at := day
	for i := 1; i <= DailyPingQuota; i++ {
		limiter.now = fixedNow(at)
		status, err := limiter.Status(1)
		if err != nil {
			t.Fatalf("Status before send %d: %v", i, err)
		}
		if !status.Allowed {
			t.Fatalf("send %d should be allowed, got %+v", i, status)
		}
		repo.addPing(1, at)
		at = at.Add(2*time.Hour + time.Minute)
	}

	limiter.now = fixedNow(at)
	status, err := limiter.Status(1)
	if err != nil {
		t.Fatalf("Status after quota: %v", err)
	}
	if status.Allowed {
		t.Error("11th ping of the day should be rejected")
	}
	if status.RemainingToday != 0 {
		t.Errorf("remaining = %d, want 0", status.RemainingToday)
	}
	if !errors.Is(status.Deny(), ErrDailyLimitReached) {
		t.Errorf("Deny() = %v, want ErrDailyLimitReached", status.Deny())
	}
}

func TestPingLimiterCooldown(t *testing.T) {
	repo := NewMockPendingNotificationRepository()
	limiter := NewPingLimiter(repo)

	sentAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	repo.addPing(1, sentAt)

	limiter.now = fixedNow(sentAt.Add(30 * time.Minute))
	status, err := limiter.Status(1)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Allowed {
		t.Error("ping 30 minutes after the last should be rejected")
	}
	if status.Cooldown != 90*time.Minute {
		t.Errorf("cooldown remaining = %v, want 90m", status.Cooldown)
	}
	if !errors.Is(status.Deny(), ErrCooldownActive) {
		t.Errorf("Deny() = %v, want ErrCooldownActive", status.Deny())
	}
}

func TestPingLimiterQuotaResetsAtMidnight(t *testing.T) {
	repo := NewMockPendingNotificationRepository()
	limiter := NewPingLimiter(repo)

	// Exhaust yesterday's quota; the last ping lands well before
	// midnight so no cooldown carries over.
	yesterday := time.Date(2025, 3, 9, 6, 0, 0, 0, time.Local)
	for i := 0; i < DailyPingQuota; i++ {
		repo.addPing(1, yesterday.Add(time.Duration(i)*time.Minute))
	}

	limiter.now = fixedNow(time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local))
	status, err := limiter.Status(1)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Allowed {
		t.Errorf("quota should reset at local midnight, got %+v", status)
	}
	if status.SentToday != 0 {
		t.Errorf("sent today = %d, want 0", status.SentToday)
	}
}

func TestPingLimiterCooldownCrossesMidnight(t *testing.T) {
	repo := NewMockPendingNotificationRepository()
	limiter := NewPingLimiter(repo)

	// A ping at 23:30 still blocks at 00:30: the quota resets but the
	// cooldown follows the last send regardless of the date.
	repo.addPing(1, time.Date(2025, 3, 9, 23, 30, 0, 0, time.Local))

	limiter.now = fixedNow(time.Date(2025, 3, 10, 0, 30, 0, 0, time.Local))
	status, err := limiter.Status(1)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Allowed {
		t.Error("cooldown must hold across midnight")
	}
	if status.Cooldown != time.Hour {
		t.Errorf("cooldown remaining = %v, want 1h", status.Cooldown)
	}
}

func TestPingLimiterCountsOnlyPings(t *testing.T) {
	repo := NewMockPendingNotificationRepository()
	limiter := NewPingLimiter(repo)
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.Local)
	limiter.now = fixedNow(now)

	// Regular message notifications from the same sender are not pings
	// and must not consume the quota.
	agg := NewAggregator(repo, NewMockDispatcher(), nil)
	if _, err := agg.HandleEvent(1, 2, 1, "new_message", EventMetadata{Content: "oi"}); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	status, err := limiter.Status(1)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.SentToday != 0 {
		t.Errorf("sent today = %d, want 0 (messages are not pings)", status.SentToday)
	}
}
