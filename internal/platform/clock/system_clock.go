package clock

import (
	"time"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// SystemClock stamps votes with the server's local calendar day, matching how
// the cafeteria thinks about "today".
type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (c SystemClock) Today() string {
	return c.Now().Format(domain.DayFormat)
}

var _ domain.Clock = SystemClock{}
