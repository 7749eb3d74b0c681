package server

import (
	"time"

	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/session"
	"github.com/at-ishikawa/literacy/internal/statistics"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

type errorResponse struct {
	Error string `json:"error"`
}

type lessonResponse struct {
	vocabulary.Lesson
	Words []vocabulary.WordEntry `json:"words"`
}

type progressResponse struct {
	Records []progress.MasteryRecord `json:"records"`
	Summary summaryResponse          `json:"summary"`
	// Incomplete is true when some stored records could not be read.
	Incomplete bool `json:"incomplete"`
}

type summaryResponse struct {
	WordsStudied   int  `json:"wordsStudied"`
	WordsMastered  int  `json:"wordsMastered"`
	AverageMastery int  `json:"averageMastery"`
	StudiedToday   int  `json:"studiedToday"`
	DailyGoal      int  `json:"dailyGoal"`
	GoalReached    bool `json:"goalReached"`
}

func toSummaryResponse(s statistics.Summary) summaryResponse {
	return summaryResponse{
		WordsStudied:   s.WordsStudied,
		WordsMastered:  s.WordsMastered,
		AverageMastery: s.AverageMastery,
		StudiedToday:   s.StudiedToday,
		DailyGoal:      s.DailyGoal,
		GoalReached:    s.GoalReached,
	}
}

type attemptRequest struct {
	Correct *bool `json:"correct"`
}

type attemptResponse struct {
	Record    progress.MasteryRecord `json:"record"`
	Persisted bool                   `json:"persisted"`
}

type createSessionRequest struct {
	UserID     string `json:"userId"`
	Difficulty int    `json:"difficulty"`
}

type difficultyRequest struct {
	Difficulty int `json:"difficulty"`
}

type sessionResponse struct {
	ID             string                `json:"id"`
	UserID         string                `json:"userId"`
	State          string                `json:"state"`
	Difficulty     int                   `json:"difficulty"`
	Word           *vocabulary.WordEntry `json:"word,omitempty"`
	Position       int                   `json:"position"`
	Total          int                   `json:"total"`
	Indicator      string                `json:"indicator"`
	Score          int                   `json:"score"`
	Answered       int                   `json:"answered"`
	Accuracy       int                   `json:"accuracy"`
	AdvancePending bool                  `json:"advancePending"`
	LoadError      string                `json:"loadError,omitempty"`
	Summary        *session.Summary      `json:"summary,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func toSessionResponse(hosted *hostedSession, snapshot session.Snapshot) sessionResponse {
	response := sessionResponse{
		ID:             hosted.id.String(),
		UserID:         hosted.userID,
		State:          snapshot.State.String(),
		Difficulty:     snapshot.Difficulty,
		Word:           snapshot.Word,
		Position:       snapshot.Position,
		Total:          snapshot.Total,
		Indicator:      snapshot.Indicator(),
		Score:          snapshot.Score,
		Answered:       snapshot.Answered,
		Accuracy:       snapshot.Accuracy,
		AdvancePending: snapshot.AdvancePending,
		Summary:        snapshot.Summary,
		CreatedAt:      hosted.createdAt,
	}
	if snapshot.LoadError != nil {
		response.LoadError = snapshot.LoadError.Error()
	}
	return response
}

type answerResponse struct {
	Session   sessionResponse        `json:"session"`
	Correct   bool                   `json:"correct"`
	Record    progress.MasteryRecord `json:"record"`
	Persisted bool                   `json:"persisted"`
}
