package app

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"tatler/internal/domain"
)

// Seed vocabularies for generated demo data.
var (
	letterGrades = []string{"A", "B", "C"}

	// Tier base scores: A 90-99, B 80-89, C 70-79.
	tierBase = map[string]int{"A": 90, "B": 80, "C": 70}

	commentTemplates = []string{
		"Amazing food! Best {dish} in the city.",
		"Great atmosphere and excellent service.",
		"The {dish} was outstanding!",
		"Highly recommend this place for a special occasion.",
		"Good food but a bit pricey.",
		"Love coming here, never disappoints!",
		"The staff was very friendly and accommodating.",
		"Perfect spot for a date night.",
		"Delicious food, will definitely return!",
		"One of my favorite restaurants in the area.",
	}

	dishes = []string{"pasta", "sushi", "steak", "pizza", "tacos", "salad", "dessert", "appetizers"}

	userIDs = []string{"user001", "user002", "user003", "user004", "user005", "user006", "user007", "user008"}
)

// MockData synthesizes grade and comment sub-documents for bulk import.
// Randomness and the clock are injected so tests can pin shape invariants;
// exact values are intentionally non-deterministic in production use.
type MockData struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewMockData(rnd *rand.Rand, now func() time.Time) *MockData {
	if now == nil {
		now = time.Now
	}
	return &MockData{rnd: rnd, now: now}
}

// Grades returns n inspection records. Dates skew further into the past
// with the index to simulate an inspection history. The displayed letter
// and the numeric score are drawn independently, so a grade "A" may carry
// a C-band score; that looseness is part of the mock-data contract.
func (m *MockData) Grades(n int) []domain.Grade {
	now := m.now()
	out := make([]domain.Grade, 0, n)
	for i := 0; i < n; i++ {
		daysAgo := m.rnd.Intn(365) + i*120
		tier := letterGrades[m.rnd.Intn(len(letterGrades))]
		out = append(out, domain.Grade{
			Date:  now.AddDate(0, 0, -daysAgo),
			Grade: letterGrades[m.rnd.Intn(len(letterGrades))],
			Score: float64(tierBase[tier] + m.rnd.Intn(10)),
		})
	}
	return out
}

// Comments returns n reviews for the named restaurant: a random template
// (with {dish} substituted), a synthetic user, a date within the last 180
// days, a rating of 4 or 5 and a fresh unique id.
func (m *MockData) Comments(name string, n int) []domain.Comment {
	_ = name // reserved for templates referencing the restaurant by name
	now := m.now()
	out := make([]domain.Comment, 0, n)
	for i := 0; i < n; i++ {
		text := commentTemplates[m.rnd.Intn(len(commentTemplates))]
		text = strings.ReplaceAll(text, "{dish}", dishes[m.rnd.Intn(len(dishes))])
		rating := 4 + m.rnd.Intn(2)
		out = append(out, domain.Comment{
			ID:      uuid.NewString(),
			Date:    now.AddDate(0, 0, -m.rnd.Intn(180)),
			Comment: text,
			UserID:  userIDs[m.rnd.Intn(len(userIDs))],
			Rating:  &rating,
		})
	}
	return out
}
