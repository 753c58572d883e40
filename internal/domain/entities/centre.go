package entities

import (
	"fmt"
	"strings"
	"time"
)

// ReservedLabelChars may not appear in level or subject names. The search index
// quotes filter values with a backtick and joins offering pairs with a bar.
const ReservedLabelChars = "|`"

// Centre represents a tuition centre listed in the directory
type Centre struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Location       string     `json:"location" db:"location"`
	WhatsAppNumber string     `json:"whatsapp_number" db:"whatsapp_number"`
	Website        *string    `json:"website,omitempty" db:"website"`
	Levels         []Level    `json:"levels" db:"-"`
	Subjects       []Subject  `json:"subjects" db:"-"`
	Offerings      []Offering `json:"offerings,omitempty" db:"-"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Level is an academic stage label such as "Primary 3"
type Level struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Subject is an academic subject label such as "Mathematics"
type Subject struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Offering records that a centre teaches a subject at a level.
// It is the only authoritative source for combined level and subject matching.
type Offering struct {
	ID       string  `json:"id" db:"id"`
	CentreID string  `json:"centre_id" db:"tuition_centre_id"`
	Level    Level   `json:"level" db:"-"`
	Subject  Subject `json:"subject" db:"-"`
}

// FlattenOfferings derives the display-only level and subject sets of a centre.
// Each appears once, in first-seen offering order.
func FlattenOfferings(offerings []Offering) ([]Level, []Subject) {
	levels := make([]Level, 0, len(offerings))
	subjects := make([]Subject, 0, len(offerings))
	seenLevels := make(map[string]struct{}, len(offerings))
	seenSubjects := make(map[string]struct{}, len(offerings))

	for _, o := range offerings {
		if _, ok := seenLevels[o.Level.ID]; !ok {
			seenLevels[o.Level.ID] = struct{}{}
			levels = append(levels, o.Level)
		}
		if _, ok := seenSubjects[o.Subject.ID]; !ok {
			seenSubjects[o.Subject.ID] = struct{}{}
			subjects = append(subjects, o.Subject)
		}
	}
	return levels, subjects
}

// ValidLabel reports whether name may be used as a level or subject name
func ValidLabel(name string) bool {
	return !strings.ContainsAny(name, ReservedLabelChars)
}

// Validate checks that c has a name and that every level and subject it
// references is a ValidLabel
func (c *Centre) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("centre %q has no name", c.ID)
	}
	check := func(kind, name string) error {
		if !ValidLabel(name) {
			return fmt.Errorf("centre %q: %s %q contains one of %q", c.Name, kind, name, ReservedLabelChars)
		}
		return nil
	}
	for _, o := range c.Offerings {
		if err := check("level", o.Level.Name); err != nil {
			return err
		}
		if err := check("subject", o.Subject.Name); err != nil {
			return err
		}
	}
	for _, l := range c.Levels {
		if err := check("level", l.Name); err != nil {
			return err
		}
	}
	for _, sub := range c.Subjects {
		if err := check("subject", sub.Name); err != nil {
			return err
		}
	}
	return nil
}
