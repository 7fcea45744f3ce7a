package models

// PredictionRequest is a live match state submitted for scoring
type PredictionRequest struct {
	BattingTeam   string  `json:"batting_team" form:"batting_team" validate:"required"`
	BowlingTeam   string  `json:"bowling_team" form:"bowling_team" validate:"required"`
	City          string  `json:"city" form:"city" validate:"required"`
	Target        float64 `json:"target" form:"target" validate:"gte=0"`
	Score         float64 `json:"score" form:"score" validate:"gte=0"`
	OversDone     string  `json:"overs_done" form:"overs_done"`
	WicketsFallen int     `json:"wickets_fallen" form:"wickets_fallen" validate:"gte=0,lte=10"`
}

// PredictionResult carries whole-number percentages for both outcomes
type PredictionResult struct {
	Success     bool   `json:"success"`
	BattingTeam string `json:"batting_team"`
	BowlingTeam string `json:"bowling_team"`
	WinProb     int    `json:"win_prob"`
	LossProb    int    `json:"loss_prob"`
}
