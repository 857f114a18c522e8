package preferences

import (
	"fmt"

	"sleeptimer/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	DurationMinutes   int
	Presets           []int
	BackgroundAllowed bool
	PlayerBusName     string
}

// DefaultSettings returns default settings for the sleep timer.
func DefaultSettings() Settings {
	return Settings{
		DurationMinutes:   model.DefaultDurationMinutes,
		Presets:           append([]int(nil), model.DefaultPresets...),
		BackgroundAllowed: true,
	}
}

// FormatMinutes renders a duration as "45m", "1h" or "1h 30m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rest)
}

// FormatRemaining renders seconds as mm:ss. Minutes are not wrapped into hours.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
