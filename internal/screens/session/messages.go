package session

import (
	"time"

	"github.com/abhisek/quizdeck/internal/quiz"
)

// questionReadyMsg is sent when generation of one batch slot finishes.
type questionReadyMsg struct {
	Slot     int
	Question *quiz.Question
	Err      error
}

// timerTickMsg is sent every second to update the elapsed time.
type timerTickMsg time.Time
