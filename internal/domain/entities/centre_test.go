package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenOfferings(t *testing.T) {
	p1 := Level{ID: "l1", Name: "Primary 1"}
	p2 := Level{ID: "l2", Name: "Primary 2"}
	math := Subject{ID: "s1", Name: "Mathematics"}
	eng := Subject{ID: "s2", Name: "English"}

	levels, subjects := FlattenOfferings([]Offering{
		{Level: p1, Subject: math},
		{Level: p1, Subject: eng},
		{Level: p2, Subject: math},
	})

	assert.Equal(t, []Level{p1, p2}, levels)
	assert.Equal(t, []Subject{math, eng}, subjects)
}

func TestFlattenOfferings_Empty(t *testing.T) {
	levels, subjects := FlattenOfferings(nil)
	assert.Empty(t, levels)
	assert.Empty(t, subjects)
}

func TestReferenceIDs_AreStableAndDistinct(t *testing.T) {
	assert.Equal(t, LevelID("Primary 1"), LevelID("Primary 1"))
	assert.NotEqual(t, LevelID("Primary 1"), LevelID("Primary 2"))
	assert.NotEqual(t, LevelID("Art"), SubjectID("Art"))

	o := NewOffering("c1", "JC 1", "Physics")
	assert.Equal(t, LevelID("JC 1"), o.Level.ID)
	assert.Equal(t, SubjectID("Physics"), o.Subject.ID)
	assert.Equal(t, OfferingID("c1", o.Level.ID, o.Subject.ID), o.ID)
	assert.NotEqual(t, o.ID, NewOffering("c2", "JC 1", "Physics").ID)
}

func TestCentre_Validate(t *testing.T) {
	valid := &Centre{ID: "c1", Name: "Alpha", Offerings: []Offering{NewOffering("c1", "Primary 1", "Mathematics")}}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&Centre{ID: "c2", Name: "  "}).Validate())

	barLevel := &Centre{ID: "c3", Name: "Beta", Offerings: []Offering{NewOffering("c3", "JC 1|JC 2", "Physics")}}
	assert.Error(t, barLevel.Validate())

	tickSubject := &Centre{ID: "c4", Name: "Gamma", Subjects: []Subject{{Name: "Eng`lish"}}}
	assert.Error(t, tickSubject.Validate())
}

func TestValidLabel(t *testing.T) {
	assert.True(t, ValidLabel("Secondary 3"))
	assert.True(t, ValidLabel("Combined Science (Physics/Chemistry)"))
	assert.False(t, ValidLabel("Primary|Maths"))
	assert.False(t, ValidLabel("`English`"))
}
