package models

import (
	"fmt"
	"time"
)

// Winner represents the result of a single hand
type Winner string

const (
	WinnerPlayer Winner = "player"
	WinnerBanker Winner = "banker"
	WinnerTie    Winner = "tie"
)

// Side represents one of the two betting sides that can win a hand outright
type Side string

const (
	SidePlayer Side = "player"
	SideBanker Side = "banker"
)

// ParseWinner converts user input into a Winner.
func ParseWinner(s string) (Winner, error) {
	switch s {
	case "player", "p", "P", "Player":
		return WinnerPlayer, nil
	case "banker", "b", "B", "Banker":
		return WinnerBanker, nil
	case "tie", "t", "T", "Tie":
		return WinnerTie, nil
	default:
		return "", fmt.Errorf("%w: unknown winner %q", ErrInvalidInput, s)
	}
}

// Side returns the winning side, or false for a tie.
func (w Winner) Side() (Side, bool) {
	switch w {
	case WinnerPlayer:
		return SidePlayer, true
	case WinnerBanker:
		return SideBanker, true
	case WinnerTie:
		return "", false
	default:
		return "", false
	}
}

// UnmarshalText rejects anything outside the three known outcomes.
func (w *Winner) UnmarshalText(text []byte) error {
	switch Winner(text) {
	case WinnerPlayer, WinnerBanker, WinnerTie:
		*w = Winner(text)
		return nil
	default:
		return fmt.Errorf("unknown winner %q", string(text))
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SidePlayer {
		return SideBanker
	}
	return SidePlayer
}

// Title returns the capitalised side name used in pattern labels.
func (s Side) Title() string {
	switch s {
	case SidePlayer:
		return "Player"
	case SideBanker:
		return "Banker"
	default:
		return ""
	}
}

// Winner converts the side back into a hand result.
func (s Side) Winner() Winner {
	return Winner(s)
}

// UnmarshalText rejects anything other than player or banker.
func (s *Side) UnmarshalText(text []byte) error {
	switch Side(text) {
	case SidePlayer, SideBanker:
		*s = Side(text)
		return nil
	default:
		return fmt.Errorf("unknown side %q", string(text))
	}
}

// OutcomeRecord represents one recorded hand in the ledger
type OutcomeRecord struct {
	ID                  string `json:"id" validate:"required"`
	Winner              Winner `json:"winner" validate:"required,oneof=player banker tie"`
	PlayerScore         *int   `json:"playerScore,omitempty" validate:"omitempty,min=0,max=9"`
	BankerScore         *int   `json:"bankerScore,omitempty" validate:"omitempty,min=0,max=9"`
	Timestamp           int64  `json:"timestamp"`
	ShoeNumber          int    `json:"shoeNumber" validate:"gte=0"`
	DealerNumber        int    `json:"dealerNumber" validate:"gte=0"`
	PredictedWinner     *Side  `json:"predictedWinner,omitempty"`
	IsCorrectPrediction *bool  `json:"isCorrectPrediction,omitempty"`
}

// Time returns the creation time of the record.
func (r *OutcomeRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// HasScores reports whether both hand totals were entered.
func (r *OutcomeRecord) HasScores() bool {
	return r.PlayerScore != nil && r.BankerScore != nil
}

// Clone returns a deep copy so callers cannot mutate ledger state through pointers.
func (r OutcomeRecord) Clone() OutcomeRecord {
	c := r
	if r.PlayerScore != nil {
		v := *r.PlayerScore
		c.PlayerScore = &v
	}
	if r.BankerScore != nil {
		v := *r.BankerScore
		c.BankerScore = &v
	}
	if r.PredictedWinner != nil {
		v := *r.PredictedWinner
		c.PredictedWinner = &v
	}
	if r.IsCorrectPrediction != nil {
		v := *r.IsCorrectPrediction
		c.IsCorrectPrediction = &v
	}
	return c
}
