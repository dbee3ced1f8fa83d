package models

import (
	"time"
)

// GameStatus represents the lifecycle state of a recap game
type GameStatus string

const (
	GameStatusOngoing  GameStatus = "ongoing"
	GameStatusFinished GameStatus = "finished"
)

// Team identifies one of the two recap teams
type Team string

const (
	TeamK Team = "K"
	TeamB Team = "B"
)

// Opposing returns the other team.
func (t Team) Opposing() Team {
	if t == TeamK {
		return TeamB
	}
	return TeamK
}

// PlayerEntry is one parsed roster line: a free-text name, a stake and
// the LF/P flags. The flags are carried through as metadata and are not
// consumed by settlement yet.
type PlayerEntry struct {
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
	IsLastWin bool   `json:"is_last_win"`
	IsPending bool   `json:"is_pending"`
}

// Roster is an ordered team roster.
type Roster []PlayerEntry

// Total returns the sum of all stakes in the roster.
func (r Roster) Total() int64 {
	var total int64
	for _, p := range r {
		total += p.Amount
	}
	return total
}

// Game is one recap round. At most one ongoing game exists per chat;
// finished games are kept as historical record.
type Game struct {
	ID            int64      `db:"id"`
	ChatID        int64      `db:"chat_id"`
	TeamK         Roster     `db:"team_k"`
	TeamB         Roster     `db:"team_b"`
	Status        GameStatus `db:"status"`
	Winner        *Team      `db:"winner"`
	FeePercentage float64    `db:"fee_percentage"`
	MessageID     int        `db:"message_id"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// RosterFor returns the roster for the given team.
func (g *Game) RosterFor(team Team) Roster {
	if team == TeamK {
		return g.TeamK
	}
	return g.TeamB
}
