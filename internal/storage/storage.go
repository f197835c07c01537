package storage

import (
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/empathy/internal/models"
)

// RoundStore keeps the results of the rounds played in this run.
type RoundStore struct {
	rounds map[string]models.RoundResult
	mu     sync.RWMutex
}

func New() *RoundStore {
	return &RoundStore{
		rounds: make(map[string]models.RoundResult),
	}
}

func (s *RoundStore) Get(roundID string) (models.RoundResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round, exists := s.rounds[roundID]
	return round, exists
}

func (s *RoundStore) Set(round models.RoundResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[round.ID] = round
}

// GetAll returns every round ordered by start time.
func (s *RoundStore) GetAll() []models.RoundResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.RoundResult, 0, len(s.rounds))
	for _, v := range s.rounds {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result
}
