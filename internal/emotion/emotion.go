package emotion

import (
	"fmt"
	"strings"
)

// Label is an emotion identifier such as "HAPPY".
type Label string

const (
	Happy     Label = "HAPPY"
	Sad       Label = "SAD"
	Calm      Label = "CALM"
	Disgusted Label = "DISGUSTED"
	Scared    Label = "SCARED"
	Confused  Label = "CONFUSED"
	Angry     Label = "ANGRY"

	// Labels an oracle may return that have no button.
	Surprised Label = "SURPRISED"
	Unknown   Label = "UNKNOWN"
)

// None is the zero Label, used before a guess or answer exists.
const None Label = ""

// Button is one choice offered to the player.
type Button struct {
	Text  string `json:"text"`
	Label Label  `json:"label"`
}

// Buttons returns the choices in display order.
func Buttons() []Button {
	return []Button{
		{Text: "Happy", Label: Happy},
		{Text: "Sad", Label: Sad},
		{Text: "Calm", Label: Calm},
		{Text: "Disgusted", Label: Disgusted},
		{Text: "Scared", Label: Scared},
		{Text: "Confused", Label: Confused},
		{Text: "Angry", Label: Angry},
	}
}

// IsButton reports whether l can be picked by the player.
func IsButton(l Label) bool {
	for _, b := range Buttons() {
		if b.Label == l {
			return true
		}
	}
	return false
}

// Normalize trims and upper-cases a vendor label.
func Normalize(s string) Label {
	return Label(strings.ToUpper(strings.TrimSpace(s)))
}

// Display renders a label the way the verdict dialog shows it: "HAPPY" becomes "Happy".
func (l Label) Display() string {
	if l == None {
		return ""
	}
	s := string(l)
	return s[:1] + strings.ToLower(s[1:])
}

// Score is a confidence for one label on the primary detected face.
type Score struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Dominant picks the label with the highest confidence.
// Ties keep the first one seen. It returns false when the list is empty
// or no confidence is above zero.
func Dominant(scores []Score) (Label, bool) {
	var highest float64
	best := None
	for _, s := range scores {
		if s.Confidence > highest {
			best = s.Label
			highest = s.Confidence
		}
	}
	return best, best != None
}

// Match compares a guess with the oracle answer. It is exact and case-sensitive.
func Match(guess, answer Label) bool {
	return guess == answer
}

// Verdict is the outcome of comparing one guess against one answer.
type Verdict struct {
	Guess   Label `json:"guess"`
	Answer  Label `json:"answer"`
	Correct bool  `json:"correct"`
}

// Judge builds the verdict for a guess.
func Judge(guess, answer Label) Verdict {
	return Verdict{Guess: guess, Answer: answer, Correct: Match(guess, answer)}
}

// Text is the message shown to the player.
func (v Verdict) Text() string {
	if v.Correct {
		return fmt.Sprintf("Correct, You guessed: %s", v.Answer.Display())
	}
	return fmt.Sprintf("Oops! That's not right. The correct emotion was: %s", v.Answer.Display())
}
