package rasbras

// Winner names the outcome of a finished round
type Winner string

const (
	WinnerTeamA Winner = "teamA"
	WinnerTeamB Winner = "teamB"
	WinnerDraw  Winner = "draw"
)

// Reason explains how the winner was decided
type Reason string

const (
	// ReasonScore means one team answered more questions correctly
	ReasonScore Reason = "score"

	// ReasonFaster means scores tied and one team finished sooner
	ReasonFaster Reason = "faster"

	// ReasonOnlyFinisher means scores tied and only one team finished before
	// the timer expired
	ReasonOnlyFinisher Reason = "only_finisher"

	// ReasonDraw means nothing separated the teams
	ReasonDraw Reason = "draw"
)

// WinnerInput is everything winner determination needs, all taken from a
// single snapshot. FinishedAt values are epoch millis; zero means the team
// never finished.
type WinnerInput struct {
	TeamACorrect    int
	TeamBCorrect    int
	TeamAFinishedAt int64
	TeamBFinishedAt int64
	GameStartedAt   int64
}

// Outcome is the determined result of a finished round
type Outcome struct {
	Winner Winner
	Reason Reason
}

// DetermineWinner decides a finished round. It is pure and total: every
// client computes the identical outcome from the same snapshot, so the main
// screen and both phones can each run it redundantly.
//
// Rules, in order: the higher score wins outright; on a score tie the team
// with the smaller elapsed time wins; if only one team finished it wins by
// default; otherwise the round is a draw.
func DetermineWinner(input WinnerInput) Outcome {
	if input.TeamACorrect > input.TeamBCorrect {
		return Outcome{Winner: WinnerTeamA, Reason: ReasonScore}
	}
	if input.TeamBCorrect > input.TeamACorrect {
		return Outcome{Winner: WinnerTeamB, Reason: ReasonScore}
	}

	aFinished := input.TeamAFinishedAt > 0
	bFinished := input.TeamBFinishedAt > 0

	switch {
	case aFinished && bFinished:
		elapsedA := input.TeamAFinishedAt - input.GameStartedAt
		elapsedB := input.TeamBFinishedAt - input.GameStartedAt
		if elapsedA < elapsedB {
			return Outcome{Winner: WinnerTeamA, Reason: ReasonFaster}
		}
		if elapsedB < elapsedA {
			return Outcome{Winner: WinnerTeamB, Reason: ReasonFaster}
		}
		return Outcome{Winner: WinnerDraw, Reason: ReasonDraw}
	case aFinished:
		return Outcome{Winner: WinnerTeamA, Reason: ReasonOnlyFinisher}
	case bFinished:
		return Outcome{Winner: WinnerTeamB, Reason: ReasonOnlyFinisher}
	default:
		return Outcome{Winner: WinnerDraw, Reason: ReasonDraw}
	}
}
