package rating

import (
	"fmt"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

func TallyKeyDayRating(day string, r domain.Rating) string {
	return fmt.Sprintf("%s:rating:%d", day, int(r))
}

func tallyKeysForDay(day string) []string {
	keys := make([]string, 0, len(domain.Ratings()))
	for _, r := range domain.Ratings() {
		keys = append(keys, TallyKeyDayRating(day, r))
	}
	return keys
}
