package verification

import (
	"fmt"
	"regexp"

	"github.com/tutor-radar/internal/domain"
)

const unknownDepartment = "Unknown Dept"

var studentIDPattern = regexp.MustCompile(`\d{7}`)

// departments maps the two department digits of a student ID to a department name.
var departments = map[string]string{
	"04": "Civil Engineering (CE)",
	"05": "Computer Science (CSE)",
	"06": "Electrical Engineering (EEE)",
	"08": "IPE",
	"10": "Mechanical Engineering (ME)",
}

// ParseAffiliation derives affiliation data from the first run of seven digits
// in email: batch (digits 1-2), department (3-4) and roll (5-7).
func ParseAffiliation(email, university string) (domain.Affiliation, error) {
	id := studentIDPattern.FindString(email)
	if id == "" {
		return domain.Affiliation{}, fmt.Errorf("no student id in %q: %w", email, domain.ErrUnparseable)
	}
	dept, ok := departments[id[2:4]]
	if !ok {
		dept = unknownDepartment
	}
	return domain.Affiliation{
		University: university,
		StudentID:  id,
		Batch:      "Batch " + id[:2],
		Department: dept,
		Roll:       id[4:7],
		Email:      email,
	}, nil
}
