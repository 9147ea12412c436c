package models

import "time"

// Mode selects the scheduling regime for a card or deck.
type Mode string

const (
	ModeTestPrep Mode = "TEST_PREP"
	ModeLongTerm Mode = "LONG_TERM"
)

// Mastery is the derived outcome level of a card. It is never set by hand;
// use mastery.Derive or the rating handlers.
type Mastery string

const (
	MasteryLearning   Mastery = "LEARNING"
	MasteryStruggling Mastery = "STRUGGLING"
	MasteryMastered   Mastery = "MASTERED"
)

// MemoryState is the memory-model state of a long-term card.
type MemoryState int

const (
	StateNew        MemoryState = 0
	StateLearning   MemoryState = 1
	StateReview     MemoryState = 2
	StateRelearning MemoryState = 3
)

func (s MemoryState) String() string {
	switch s {
	case StateNew:
		return "New"
	case StateLearning:
		return "Learning"
	case StateReview:
		return "Review"
	case StateRelearning:
		return "Relearning"
	default:
		return "MemoryState(?)"
	}
}

// LearningState tracks the intra-day learning phase shared by both modes.
type LearningState string

const (
	LearningStateLearning   LearningState = "LEARNING"
	LearningStateRelearning LearningState = "RELEARNING"
	LearningStateGraduated  LearningState = "GRADUATED"
)

// LearningCardType governs whether due comparison uses the exact timestamp
// or the calendar day.
type LearningCardType string

const (
	CardTypeIntraday LearningCardType = "INTRADAY"
	CardTypeInterday LearningCardType = "INTERDAY"
)

// TestPrepState holds the fields that only exist while a card is in
// TEST_PREP mode. Cleared on conversion to LONG_TERM.
type TestPrepState struct {
	TestDate    time.Time `json:"test_date"`
	Schedule    []int     `json:"schedule"` // ladder of day offsets
	CurrentStep int       `json:"current_step"`
}

// MemoryModel holds the adaptive-model fields of a LONG_TERM card.
type MemoryModel struct {
	State      MemoryState `json:"state"`
	Stability  float64     `json:"stability"`  // days
	Difficulty float64     `json:"difficulty"` // 1-10
}

// Card is a unit of memorized content plus its scheduling state.
// Exactly one of TestPrep / Memory is populated, keyed by Mode.
type Card struct {
	ID     int64 `json:"id"`
	DeckID int64 `json:"deck_id"`
	Mode   Mode  `json:"mode"`

	LearningState    LearningState    `json:"learning_state"`
	LearningStep     int              `json:"learning_step"`
	LearningCardType LearningCardType `json:"learning_card_type"`

	TestPrep *TestPrepState `json:"test_prep,omitempty"`
	Memory   *MemoryModel   `json:"memory,omitempty"`

	Mastery      Mastery    `json:"mastery"`
	Reps         int        `json:"reps"`
	Lapses       int        `json:"lapses"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
	// NextReviewAt is the authoritative due timestamp.
	NextReviewAt time.Time `json:"next_review_at"`
	// OriginalDueAt preserves the pre-load-balancing due date for audit/undo.
	OriginalDueAt *time.Time `json:"original_due_at,omitempty"`
	LastResponse  *Rating    `json:"last_response,omitempty"`

	IsLeech        bool `json:"is_leech"`
	LeechSuspended bool `json:"leech_suspended"`

	CreatedAt time.Time `json:"created_at"`
}

// NewCard creates a card in its initial state for the given mode.
// Test-prep cards get their ladder from the caller (testprep.GenerateSchedule).
func NewCard(deckID int64, mode Mode, now time.Time) Card {
	c := Card{
		DeckID:           deckID,
		Mode:             mode,
		LearningState:    LearningStateLearning,
		LearningCardType: CardTypeIntraday,
		Mastery:          MasteryLearning,
		NextReviewAt:     now,
		CreatedAt:        now,
	}
	if mode == ModeLongTerm {
		c.Memory = &MemoryModel{State: StateNew}
	} else {
		c.TestPrep = &TestPrepState{}
	}
	return c
}

// ReviewAction signals session-level behavior alongside a card update.
type ReviewAction string

const (
	// ActionRequeue asks the session to show the card again before it ends.
	ActionRequeue ReviewAction = "REQUEUE"
)

// CardUpdate is a partial-field diff produced by the scheduling core.
// Nil pointers mean "unchanged"; the store applies only the set fields.
type CardUpdate struct {
	CardID int64 `json:"card_id"`

	Mode             *Mode             `json:"mode,omitempty"`
	LearningState    *LearningState    `json:"learning_state,omitempty"`
	LearningStep     *int              `json:"learning_step,omitempty"`
	LearningCardType *LearningCardType `json:"learning_card_type,omitempty"`

	CurrentStep   *int `json:"current_step,omitempty"`
	ClearTestPrep bool `json:"clear_test_prep,omitempty"`

	State      *MemoryState `json:"state,omitempty"`
	Stability  *float64     `json:"stability,omitempty"`
	Difficulty *float64     `json:"difficulty,omitempty"`

	Mastery       *Mastery   `json:"mastery,omitempty"`
	Reps          *int       `json:"reps,omitempty"`
	Lapses        *int       `json:"lapses,omitempty"`
	LastReviewAt  *time.Time `json:"last_review_at,omitempty"`
	NextReviewAt  *time.Time `json:"next_review_at,omitempty"`
	OriginalDueAt *time.Time `json:"original_due_at,omitempty"`
	LastResponse  *Rating    `json:"last_response,omitempty"`
	IsLeech       *bool      `json:"is_leech,omitempty"`

	// Action and Interval describe the review outcome for the caller;
	// they are not persisted card fields.
	Action   ReviewAction  `json:"action,omitempty"`
	Interval time.Duration `json:"interval,omitempty"`
}

// Apply returns a copy of the card with the update's set fields applied.
// The input card is not mutated.
func (c Card) Apply(u CardUpdate) Card {
	out := c
	if c.TestPrep != nil {
		tp := *c.TestPrep
		tp.Schedule = append([]int(nil), c.TestPrep.Schedule...)
		out.TestPrep = &tp
	}
	if c.Memory != nil {
		m := *c.Memory
		out.Memory = &m
	}

	if u.Mode != nil {
		out.Mode = *u.Mode
	}
	if u.LearningState != nil {
		out.LearningState = *u.LearningState
	}
	if u.LearningStep != nil {
		out.LearningStep = *u.LearningStep
	}
	if u.LearningCardType != nil {
		out.LearningCardType = *u.LearningCardType
	}
	if u.CurrentStep != nil && out.TestPrep != nil {
		out.TestPrep.CurrentStep = *u.CurrentStep
	}
	if u.ClearTestPrep {
		out.TestPrep = nil
	}
	if u.State != nil || u.Stability != nil || u.Difficulty != nil {
		if out.Memory == nil {
			out.Memory = &MemoryModel{}
		}
		if u.State != nil {
			out.Memory.State = *u.State
		}
		if u.Stability != nil {
			out.Memory.Stability = *u.Stability
		}
		if u.Difficulty != nil {
			out.Memory.Difficulty = *u.Difficulty
		}
	}
	if u.Mastery != nil {
		out.Mastery = *u.Mastery
	}
	if u.Reps != nil {
		out.Reps = *u.Reps
	}
	if u.Lapses != nil {
		out.Lapses = *u.Lapses
	}
	if u.LastReviewAt != nil {
		t := *u.LastReviewAt
		out.LastReviewAt = &t
	}
	if u.NextReviewAt != nil {
		out.NextReviewAt = *u.NextReviewAt
	}
	if u.OriginalDueAt != nil {
		t := *u.OriginalDueAt
		out.OriginalDueAt = &t
	}
	if u.LastResponse != nil {
		r := *u.LastResponse
		out.LastResponse = &r
	}
	if u.IsLeech != nil {
		out.IsLeech = *u.IsLeech
	}
	return out
}

// IntervalPreviews holds the human-readable next interval for each rating,
// computed without mutating the card.
type IntervalPreviews struct {
	Again string `json:"again"`
	Hard  string `json:"hard"`
	Good  string `json:"good"`
	Easy  string `json:"easy"`
}
