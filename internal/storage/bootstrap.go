package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/geotutor/internal/models"
)

// Document names inside the data directory.
const (
	UsersDocument    = "users.json"
	ProgressDocument = "progress.json"
)

// Bootstrap creates the data and frontend directories and seeds the JSON
// documents that do not exist yet.
func Bootstrap(dataDir, frontendDir string) (*FS, error) {
	for _, dir := range []string{dataDir, frontendDir, filepath.Join(frontendDir, "images")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", dir, err)
		}
	}

	store, err := NewFS(dataDir)
	if err != nil {
		return nil, err
	}

	if !store.Exists(UsersDocument) {
		if err := WriteJSON(store, UsersDocument, SeedUsers()); err != nil {
			return nil, err
		}
	}
	if !store.Exists(ProgressDocument) {
		if err := WriteJSON(store, ProgressDocument, SeedProgress()); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// SeedUsers returns the initial users.json content.
func SeedUsers() models.UserDirectory {
	johnReg := time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)
	sarahReg := time.Date(2024, 1, 12, 9, 15, 0, 0, time.UTC)
	return models.UserDirectory{
		Students: []models.User{
			{
				ID:               "student_001",
				Username:         "john_math",
				Name:             "John",
				Email:            "john@example.com",
				Type:             models.UserTypeStudent,
				RegistrationDate: models.At(johnReg),
			},
			{
				ID:               "student_002",
				Username:         "sarah_geo",
				Name:             "Sarah",
				Email:            "sarah@example.com",
				Type:             models.UserTypeStudent,
				RegistrationDate: models.At(sarahReg),
			},
		},
		Guests:   []models.User{},
		Sessions: []models.Session{},
	}
}

// SeedProgress returns the initial progress.json content.
func SeedProgress() models.ProgressBook {
	lastQuiz := time.Date(2024, 1, 15, 10, 45, 0, 0, time.UTC)
	lastPractice := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return models.ProgressBook{
		"john_math": {
			UserID: "student_001",
			Name:   "John",
			Quiz: models.QuizStats{
				TotalScore:   85,
				TotalQuizzes: 2,
				AverageScore: 85,
				LastQuiz:     models.At(lastQuiz),
			},
			Practice: models.PracticeStats{
				CompletedExercises: 8,
				CorrectAnswers:     7,
				Accuracy:           87.5,
				LastPractice:       models.At(lastPractice),
			},
			OverallProgress: 86.25,
			LearningPatterns: models.LearningPatterns{
				StrongAreas:  []string{"cube_volume", "triangle_area"},
				WeakAreas:    []string{"sphere_surface", "cylinder_volume"},
				LastActivity: models.At(lastQuiz),
			},
		},
	}
}
