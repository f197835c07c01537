package game

import (
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/empathy/internal/models"
)

// Summary counts how the rounds of a run ended.
type Summary struct {
	Total    int
	Correct  int
	Outcomes map[models.Outcome]int
}

// Summarize tallies results.
func Summarize(results []models.RoundResult) *Summary {
	s := &Summary{Outcomes: make(map[models.Outcome]int)}
	for _, r := range results {
		s.Total++
		s.Outcomes[r.Outcome]++
		if r.Outcome == models.OutcomeCorrect {
			s.Correct++
		}
	}
	return s
}

// Scored is the number of rounds that ended with a verdict.
func (s *Summary) Scored() int {
	return s.Outcomes[models.OutcomeCorrect] + s.Outcomes[models.OutcomeIncorrect]
}

// Accuracy is the share of scored rounds guessed right, 0 when none were scored.
func (s *Summary) Accuracy() float64 {
	if s.Scored() == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Scored())
}

// Print writes the summary table.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Game Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Images:             %d\n", s.Total)
	fmt.Fprintf(w, "Scored rounds:      %d\n", s.Scored())
	fmt.Fprintf(w, "Correct guesses:    %d\n", s.Correct)
	fmt.Fprintf(w, "Accuracy:           %.2f%%\n", s.Accuracy()*100)

	skipped := []models.Outcome{
		models.OutcomeNoFace,
		models.OutcomeNoGuess,
		models.OutcomeFetchError,
		models.OutcomeWindowError,
		models.OutcomeOracleError,
		models.OutcomeCancelled,
	}
	printedHeader := false
	for _, o := range skipped {
		n := s.Outcomes[o]
		if n == 0 {
			continue
		}
		if !printedHeader {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Skipped:")
			printedHeader = true
		}
		fmt.Fprintf(w, "  %s: %d\n", o, n)
	}
	fmt.Fprintln(w, "========================================")
}
