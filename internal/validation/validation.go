package validation

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/amoralabs/amora-backend/internal/models"
)

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

func MaxTitleLength() int {
	maxStr := os.Getenv("MAX_TITLE_LENGTH")
	if maxStr == "" {
		return 200
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 200
	}
	return max
}

// TrimAndLimit trims whitespace and caps the string at max bytes. The
// cut backs up to a rune boundary so accents and emoji never come out
// split mid-sequence.
func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut]
	}
	return s
}

// ValidNotificationType reports whether the type names a template pool.
func ValidNotificationType(typ string) bool {
	switch models.NotificationType(typ) {
	case models.NotifNewMessage, models.NotifMultipleMessages,
		models.NotifThreadReply, models.NotifStatusChange,
		models.NotifPinnedArgument, models.NotifReaction,
		models.NotifPing:
		return true
	}
	return false
}

// ValidDiscussionStatus reports whether the status is a known transition
// target.
func ValidDiscussionStatus(status string) bool {
	switch models.DiscussionStatus(status) {
	case models.DiscussionOpen, models.DiscussionResolved, models.DiscussionArchived:
		return true
	}
	return false
}
