package models

// Document field names. Partial updates address fields by these names; they
// must match the json tags on Session.
const (
	FieldSessionID        = "sessionId"
	FieldGameType         = "gameType"
	FieldStatus           = "status"
	FieldCreatedAt        = "createdAt"
	FieldLastHeartbeat    = "lastHeartbeat"
	FieldGameStartedAt    = "gameStartedAt"
	FieldTimerResetAt     = "timerResetAt"
	FieldTimerDuration    = "timerDuration"
	FieldDifficulty       = "difficulty"
	FieldWord             = "word"
	FieldAnswer           = "answer"
	FieldAnswerImageURL   = "answerImageUrl"
	FieldAnswerAudioURL   = "answerAudioUrl"
	FieldAnswerVideoURL   = "answerVideoUrl"
	FieldPlayerReady      = "playerReady"
	FieldPlayerReadyAt    = "playerReadyAt"
	FieldMaxQuestions     = "maxQuestions"
	FieldQuestionCount    = "questionCount"
	FieldQuestions        = "questions"
	FieldStrokes          = "strokes"
	FieldPlayer           = "player"
	FieldPlayerHeartbeat  = "playerHeartbeat"
	FieldTeamA            = "teamA"
	FieldTeamB            = "teamB"
	FieldTeamAHeartbeat   = "teamAHeartbeat"
	FieldTeamBHeartbeat   = "teamBHeartbeat"
)
