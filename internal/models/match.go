package models

// MatchRecord represents one completed match from the historical matches table
type MatchRecord struct {
	ID     string `json:"id"`
	Season string `json:"season,omitempty"`
	City   string `json:"city"`
	Venue  string `json:"venue,omitempty"`
	Winner string `json:"winner"`
}

// HasWinner reports whether the match produced a result
func (m *MatchRecord) HasWinner() bool {
	return m.Winner != ""
}

// DeliveryRecord represents one ball bowled, as recorded in the deliveries table.
// Over and Ball are 1-based; Ball may exceed 6 when extras were bowled.
type DeliveryRecord struct {
	MatchID     string `json:"match_id"`
	Inning      int    `json:"inning"`
	Over        int    `json:"over"`
	Ball        int    `json:"ball"`
	BattingTeam string `json:"batting_team"`
	BowlingTeam string `json:"bowling_team"`
	TotalRuns   int    `json:"total_runs"`
	Dismissal   bool   `json:"dismissal"`
}

// DeliveryKey identifies a delivery within the whole dataset
type DeliveryKey struct {
	MatchID string
	Inning  int
	Over    int
	Ball    int
}

// Key returns the identity of the delivery
func (d *DeliveryRecord) Key() DeliveryKey {
	return DeliveryKey{MatchID: d.MatchID, Inning: d.Inning, Over: d.Over, Ball: d.Ball}
}

// BallsBowled returns the raw ball count implied by the over/ball numbering.
// Extras are not renumbered, so the result can exceed the legal delivery count.
func (d *DeliveryRecord) BallsBowled() int {
	return (d.Over-1)*6 + d.Ball
}
