package ledger

import "time"

// #region user-response

// UserResponse is the UI layer's report of how the user reacted to an intervention.
type UserResponse string

const (
	ResponseEngaged   UserResponse = "engaged_positively"
	ResponseDismissed UserResponse = "dismissed_quickly"
	ResponseIgnored   UserResponse = "ignored"
)

// ParseUserResponse maps a UI string onto a known response.
func ParseUserResponse(s string) (UserResponse, bool) {
	switch UserResponse(s) {
	case ResponseEngaged, ResponseDismissed, ResponseIgnored:
		return UserResponse(s), true
	}
	return "", false
}

// #endregion user-response

// #region multiplier-bounds

const (
	MinMultiplier = 0.5
	MaxMultiplier = 3.0

	dismissFactor = 1.5
	engageFactor  = 0.8
)

// #endregion multiplier-bounds

// #region cooldown-entry

// CooldownEntry tracks when an intervention type last fired and how far its
// cooldown has been stretched by user feedback.
type CooldownEntry struct {
	TypeID          string
	LastTriggeredAt time.Time // zero if never triggered
	Multiplier      float64   // [MinMultiplier, MaxMultiplier]
}

// #endregion cooldown-entry
