package export

import (
	"encoding/json"
)

// jsonDay mirrors daySection with wire-stable field names.
type jsonDay struct {
	Day     string       `json:"day"`
	Votes   []voteRow    `json:"votes"`
	Summary []summaryRow `json:"summary"`
}

// renderJSON emits one object for a single day and a day-keyed mapping for
// the full export.
func renderJSON(sections []daySection, all bool) ([]byte, error) {
	if !all {
		section := daySection{}
		if len(sections) > 0 {
			section = sections[0]
		}
		return json.MarshalIndent(toJSONDay(section), "", "  ")
	}

	out := make(map[string]jsonDay, len(sections))
	for _, section := range sections {
		out[section.Day] = toJSONDay(section)
	}
	return json.MarshalIndent(out, "", "  ")
}

func toJSONDay(section daySection) jsonDay {
	votes := section.Votes
	if votes == nil {
		votes = []voteRow{}
	}
	return jsonDay{
		Day:     section.Day,
		Votes:   votes,
		Summary: section.Summary,
	}
}
