package entity

import "time"

// Session is everything the server keeps for one signed-in browser.
type Session struct {
	ID         string       `json:"id"`
	Player     Player       `json:"player"`
	Game       GameState    `json:"game"`
	HighScores []ScoreEntry `json:"high_scores,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
