// Package progress aggregates quiz and practice results per user in
// progress.json.
package progress

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/geotutor/internal/apperr"
	"github.com/starford/geotutor/internal/models"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/storage"
)

// QuizResult is one submitted quiz. It only counts when both fields are set.
type QuizResult struct {
	Score *float64 `json:"score"`
	Total *int     `json:"total"`
}

func (q *QuizResult) complete() bool {
	return q != nil && q.Score != nil && q.Total != nil
}

// Validate validates the quiz result.
func (q *QuizResult) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Score, validation.Min(0.0)),
		validation.Field(&q.Total, validation.Min(0)),
	)
}

// PracticeResult is one submitted practice round.
type PracticeResult struct {
	Completed []models.ExerciseResult `json:"completed"`
	Correct   int                     `json:"correct"`
}

// Validate validates the practice result.
func (p *PracticeResult) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Correct, validation.Min(0)),
	)
}

// Update carries an optional quiz and an optional practice result.
type Update struct {
	Quiz     *QuizResult     `json:"quiz,omitempty"`
	Practice *PracticeResult `json:"practice,omitempty"`
}

// Validate validates the update.
func (u *Update) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Quiz),
		validation.Field(&u.Practice),
	)
}

// Service reads and updates progress records.
type Service struct {
	store storage.Provider
	onto  ontology.Source
	now   func() time.Time
}

// NewService creates a new progress service. onto may be nil.
func NewService(store storage.Provider, onto ontology.Source) *Service {
	return &Service{store: store, onto: onto, now: time.Now}
}

func (s *Service) book() models.ProgressBook {
	book := models.ProgressBook{}
	storage.ReadJSON(s.store, storage.ProgressDocument, &book)
	return book
}

// Get returns the stored record for userID. Users without a stored record
// get one seeded from a matching ontology Progress individual, or a zeroed
// default.
func (s *Service) Get(_ context.Context, userID string) *models.Progress {
	if p, ok := s.book()[userID]; ok && p != nil {
		normalize(p, userID)
		return p
	}
	if s.onto != nil {
		if rec, ok := s.onto.Current().FindProgress(userID); ok {
			return fromOntology(userID, rec)
		}
	}
	return models.NewProgress(userID)
}

func fromOntology(userID string, rec ontology.ProgressRecord) *models.Progress {
	p := models.NewProgress(userID)
	p.Quiz.AverageScore = metric(rec, "quiz_score")
	p.Practice.Accuracy = metric(rec, "practice_score")
	p.OverallProgress = metric(rec, "completion_percentage")
	p.FromOntology = true
	return p
}

func metric(rec ontology.ProgressRecord, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(rec.Metrics[key]), 64)
	if err != nil {
		return 0
	}
	return v
}

// Save applies an update to userID's record, creating it on first write,
// and returns the stored result.
func (s *Service) Save(_ context.Context, userID string, u Update) (*models.Progress, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id: %w", apperr.ErrInvalidInput)
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	var saved models.Progress
	err := s.update(userID, func(p *models.Progress) {
		now := s.now()
		if u.Quiz.complete() {
			p.Quiz.TotalScore += *u.Quiz.Score
			p.Quiz.TotalQuizzes++
			p.Quiz.AverageScore = p.Quiz.TotalScore / float64(p.Quiz.TotalQuizzes)
			p.Quiz.LastQuiz = models.At(now)
		}
		if u.Practice != nil {
			p.Practice.CompletedExercises += len(u.Practice.Completed)
			p.Practice.CorrectAnswers += u.Practice.Correct
			if p.Practice.CompletedExercises > 0 {
				p.Practice.Accuracy = float64(p.Practice.CorrectAnswers) / float64(p.Practice.CompletedExercises) * 100
			}
			p.Practice.LastPractice = models.At(now)
		}

		quizAvg, practiceAcc := p.Quiz.AverageScore, p.Practice.Accuracy
		switch {
		case quizAvg > 0 && practiceAcc > 0:
			p.OverallProgress = (quizAvg + practiceAcc) / 2
		case quizAvg > 0:
			p.OverallProgress = quizAvg
		case practiceAcc > 0:
			p.OverallProgress = practiceAcc
		}
		p.LearningPatterns.LastActivity = models.At(now)
		saved = *p
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// SaveQuizResult records one quiz. A zero total is treated as 1.
func (s *Service) SaveQuizResult(ctx context.Context, userID string, score float64, total int) (*models.Progress, error) {
	if total == 0 {
		total = 1
	}
	return s.Save(ctx, userID, Update{Quiz: &QuizResult{Score: &score, Total: &total}})
}

// SavePracticeResult records one practice round.
func (s *Service) SavePracticeResult(ctx context.Context, userID string, completed []models.ExerciseResult, correct int) (*models.Progress, error) {
	return s.Save(ctx, userID, Update{Practice: &PracticeResult{Completed: completed, Correct: correct}})
}

var patternShapes = []string{"cube", "sphere", "cone", "cylinder", "triangle", "rectangle"}

// UpdateLearningPattern adds the first shape named in topic to the weak
// areas unless it is already classified.
func (s *Service) UpdateLearningPattern(_ context.Context, userID, topic string) (*models.Progress, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id: %w", apperr.ErrInvalidInput)
	}
	lower := strings.ToLower(topic)
	var saved models.Progress
	err := s.update(userID, func(p *models.Progress) {
		lp := &p.LearningPatterns
		for _, shape := range patternShapes {
			if !strings.Contains(lower, shape) {
				continue
			}
			if !slices.Contains(lp.StrongAreas, shape) && !slices.Contains(lp.WeakAreas, shape) {
				lp.WeakAreas = append(lp.WeakAreas, shape)
			}
			break
		}
		now := s.now()
		lp.LastActivity = models.At(now)
		saved = *p
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Service) update(userID string, fn func(p *models.Progress)) error {
	err := storage.UpdateJSON(s.store, storage.ProgressDocument, func(book *models.ProgressBook) error {
		if *book == nil {
			*book = models.ProgressBook{}
		}
		p, ok := (*book)[userID]
		if !ok || p == nil {
			p = models.NewProgress(userID)
			(*book)[userID] = p
		}
		normalize(p, userID)
		fn(p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("progress: update %s: %w", userID, err)
	}
	return nil
}

func normalize(p *models.Progress, userID string) {
	if p.UserID == "" {
		p.UserID = userID
	}
	if p.LearningPatterns.StrongAreas == nil {
		p.LearningPatterns.StrongAreas = []string{}
	}
	if p.LearningPatterns.WeakAreas == nil {
		p.LearningPatterns.WeakAreas = []string{}
	}
}
