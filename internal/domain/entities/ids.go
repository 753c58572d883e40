package entities

import "github.com/google/uuid"

// referenceNamespace seeds name-based ids so every loader derives the same id
// for the same level, subject or offering
var referenceNamespace = uuid.MustParse("6f0d8a4e-3c1b-5e2f-9a7d-1b2c3d4e5f60")

// LevelID returns the stable id of the level called name
func LevelID(name string) string {
	return uuid.NewSHA1(referenceNamespace, []byte("level:"+name)).String()
}

// SubjectID returns the stable id of the subject called name
func SubjectID(name string) string {
	return uuid.NewSHA1(referenceNamespace, []byte("subject:"+name)).String()
}

// OfferingID returns the stable id of a (centre, level, subject) triple
func OfferingID(centreID, levelID, subjectID string) string {
	return uuid.NewSHA1(referenceNamespace, []byte("offering:"+centreID+"|"+levelID+"|"+subjectID)).String()
}

// NewOffering builds an offering for centreID from level and subject names
func NewOffering(centreID, levelName, subjectName string) Offering {
	level := Level{ID: LevelID(levelName), Name: levelName}
	subject := Subject{ID: SubjectID(subjectName), Name: subjectName}
	return Offering{
		ID:       OfferingID(centreID, level.ID, subject.ID),
		CentreID: centreID,
		Level:    level,
		Subject:  subject,
	}
}

// CentreID returns the stable id of a centre that has no id of its own
func CentreID(name string) string {
	return uuid.NewSHA1(referenceNamespace, []byte("centre:"+name)).String()
}
