package entity

import (
	"bytes"
	"encoding/json"
)

// ScoreEntry is one row of the remote leaderboard.
type ScoreEntry struct {
	ID     string `json:"_id,omitempty"`
	Player string `json:"player"`
	Score  Score  `json:"score"`
}

// Score is the leaderboard value as the service returned it. The service stores form values
// as-is, so a row may carry a number, a quoted number or any text; it is shown verbatim.
type Score string

func (that *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || string(data) == "null":
		*that = ""
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			*that = Score(bytes.Trim(data, `"`))
			return nil
		}
		*that = Score(text)
	default:
		*that = Score(data)
	}

	return nil
}

// MarshalJSON writes numeric scores as JSON numbers and anything else as a string.
func (that Score) MarshalJSON() ([]byte, error) {
	if that.isNumber() {
		return []byte(that), nil
	}

	return json.Marshal(string(that))
}

func (that Score) isNumber() bool {
	if that == "" {
		return false
	}

	if c := that[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}

	return json.Valid([]byte(that))
}
