package notify

import (
	"errors"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/repository"
)

const (
	// DailyPingQuota caps manual pings per sender per calendar day.
	DailyPingQuota = 10
	// PingCooldown is the minimum gap between two pings from the same
	// sender, independent of the daily quota.
	PingCooldown = 2 * time.Hour
)

var (
	ErrDailyLimitReached = errors.New("daily ping limit reached")
	ErrCooldownActive    = errors.New("ping cooldown active")
)

// PingStatus is the result of checking both constraints at once.
type PingStatus struct {
	Allowed        bool          `json:"allowed"`
	SentToday      int           `json:"sent_today"`
	RemainingToday int           `json:"remaining_today"`
	Cooldown       time.Duration `json:"-"`
}

// PingLimiter bounds the manual "thinking of you" ping. Both the quota
// and the cooldown derive from the persisted notification log, so every
// device of the sender sees the same counters. Reads are not linearizable
// with concurrent sends; one extra ping under a true race is acceptable.
type PingLimiter struct {
	pending repository.PendingNotificationRepositoryInterface
	now     func() time.Time
}

func NewPingLimiter(pending repository.PendingNotificationRepositoryInterface) *PingLimiter {
	return &PingLimiter{pending: pending, now: time.Now}
}

// Status evaluates quota and cooldown together. A send is allowed only
// when under quota AND past the cooldown.
func (l *PingLimiter) Status(userID uint) (PingStatus, error) {
	now := l.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	sentToday, err := l.pending.CountSentSince(userID, models.NotifPing, midnight)
	if err != nil {
		return PingStatus{}, err
	}

	status := PingStatus{
		SentToday:      int(sentToday),
		RemainingToday: DailyPingQuota - int(sentToday),
	}
	if status.RemainingToday < 0 {
		status.RemainingToday = 0
	}

	last, err := l.pending.LastSentAt(userID, models.NotifPing)
	if err != nil {
		return PingStatus{}, err
	}
	if last != nil {
		if elapsed := now.Sub(*last); elapsed < PingCooldown {
			status.Cooldown = PingCooldown - elapsed
		}
	}

	status.Allowed = status.RemainingToday > 0 && status.Cooldown == 0
	return status, nil
}

// CanSend reports whether a ping may go out right now.
func (l *PingLimiter) CanSend(userID uint) (bool, error) {
	status, err := l.Status(userID)
	if err != nil {
		return false, err
	}
	return status.Allowed, nil
}

// RemainingToday reports how many pings are left under today's quota.
func (l *PingLimiter) RemainingToday(userID uint) (int, error) {
	status, err := l.Status(userID)
	if err != nil {
		return 0, err
	}
	return status.RemainingToday, nil
}

// CooldownRemaining reports how long until the cooldown clears; zero
// means no cooldown is active.
func (l *PingLimiter) CooldownRemaining(userID uint) (time.Duration, error) {
	status, err := l.Status(userID)
	if err != nil {
		return 0, err
	}
	return status.Cooldown, nil
}

// Deny maps a disallowed status to its reason. Quota exhaustion wins over
// cooldown when both apply.
func (s PingStatus) Deny() error {
	if s.Allowed {
		return nil
	}
	if s.RemainingToday <= 0 {
		return ErrDailyLimitReached
	}
	return ErrCooldownActive
}
