package attendance

import (
	"fmt"
	"time"
)

// AbsencePenalty is the xp removed for every unexcused absence.
const AbsencePenalty = 10

// Status is the classification of one member in an attendance pass.
type Status string

const (
	StatusPresent   Status = "present"
	StatusExcused   Status = "excused"
	StatusAbsent    Status = "absent"
	StatusEscalated Status = "escalated"
)

// Entry is one report line.
type Entry struct {
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Status        Status `json:"status"`
	Label         string `json:"label"`
	TotalAbsences int    `json:"total_absences"`
	Tier          int    `json:"tier,omitempty"`
	XP            int    `json:"xp"`
	Error         string `json:"error,omitempty"`
}

// Report is the result of one attendance pass.
type Report struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Entries    []Entry   `json:"entries"`
	Present    int       `json:"present"`
	Excused    int       `json:"excused"`
	Absent     int       `json:"absent"`
	Escalated  int       `json:"escalated"`
	Failed     int       `json:"failed"`
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
	switch e.Status {
	case StatusPresent:
		r.Present++
	case StatusExcused:
		r.Excused++
	case StatusAbsent:
		r.Absent++
	case StatusEscalated:
		r.Escalated++
	}
	if e.Error != "" {
		r.Failed++
	}
}

func label(status Status, reason string, total, tier int) string {
	switch status {
	case StatusPresent:
		return "PRESENT"
	case StatusExcused:
		return fmt.Sprintf("EXCUSED (%s)", reason)
	case StatusEscalated:
		return fmt.Sprintf("ABSENT -> WARNING LEVEL %d", tier)
	default:
		return fmt.Sprintf("ABSENT (total: %d)", total)
	}
}
