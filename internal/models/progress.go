package models

// QuizStats aggregates every quiz a user has submitted.
type QuizStats struct {
	TotalScore   float64    `json:"total_score"`
	TotalQuizzes int        `json:"total_quizzes"`
	AverageScore float64    `json:"average_score"`
	LastQuiz     *Timestamp `json:"last_quiz"`
}

// PracticeStats aggregates practice exercises.
type PracticeStats struct {
	CompletedExercises int        `json:"completed_exercises"`
	CorrectAnswers     int        `json:"correct_answers"`
	Accuracy           float64    `json:"accuracy"`
	LastPractice       *Timestamp `json:"last_practice"`
}

// LearningPatterns is the free-text strong/weak areas list.
type LearningPatterns struct {
	StrongAreas  []string   `json:"strong_areas"`
	WeakAreas    []string   `json:"weak_areas"`
	LastActivity *Timestamp `json:"last_activity"`
}

// Progress is one user's record in progress.json.
type Progress struct {
	UserID           string           `json:"user_id"`
	Name             string           `json:"name,omitempty"`
	Quiz             QuizStats        `json:"quiz"`
	Practice         PracticeStats    `json:"practice"`
	OverallProgress  float64          `json:"overall_progress"`
	LearningPatterns LearningPatterns `json:"learning_patterns"`
	FromOntology     bool             `json:"from_ontology,omitempty"`
}

// NewProgress returns the zeroed record used for users without history.
func NewProgress(userID string) *Progress {
	return &Progress{
		UserID: userID,
		LearningPatterns: LearningPatterns{
			StrongAreas: []string{},
			WeakAreas:   []string{},
		},
	}
}

// ProgressBook is the whole progress.json document, keyed by user id.
type ProgressBook map[string]*Progress

// ExerciseResult is one answered practice exercise. Correct is nil when the
// exercise was skipped.
type ExerciseResult struct {
	ID      string `json:"id,omitempty"`
	Correct *bool  `json:"correct,omitempty"`
}
