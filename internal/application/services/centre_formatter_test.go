package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

func TestFormatCentre(t *testing.T) {
	website := "https://alpha.example.com"
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &entities.Centre{
		ID:             "c1",
		Name:           "Alpha",
		Location:       "Tampines",
		WhatsAppNumber: "+65 9123-4567",
		Website:        &website,
		Levels: []entities.Level{
			{ID: "l1", Name: "Primary 1"},
			{ID: "l1", Name: "Primary 1"},
		},
		Subjects:  []entities.Subject{{ID: "s1", Name: "Mathematics"}},
		CreatedAt: created,
		UpdatedAt: created,
	}

	out := FormatCentre(c)
	assert.Equal(t, "https://wa.me/6591234567", out.WhatsAppLink)
	assert.Equal(t, "+65 9123-4567", out.WhatsAppNumber)
	assert.Equal(t, []entities.RefItem{{ID: "l1", Name: "Primary 1"}}, out.Levels)
	assert.Equal(t, []entities.RefItem{{ID: "s1", Name: "Mathematics"}}, out.Subjects)
	require.NotNil(t, out.Website)
	assert.Equal(t, website, *out.Website)
}

func TestFormatCentre_JSONShape(t *testing.T) {
	out := FormatCentre(&entities.Centre{ID: "c2", Name: "Beta", WhatsAppNumber: "n/a"})

	data, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "website")
	assert.Equal(t, "", decoded["whatsappLink"])
	assert.Equal(t, []interface{}{}, decoded["levels"])
	assert.Equal(t, []interface{}{}, decoded["subjects"])
	for _, key := range []string{"id", "name", "location", "whatsappNumber", "createdAt", "updatedAt"} {
		assert.Contains(t, decoded, key)
	}
}

func TestFormatCentre_EmptyWebsiteIsOmitted(t *testing.T) {
	empty := ""
	out := FormatCentre(&entities.Centre{ID: "c3", Website: &empty})
	assert.Nil(t, out.Website)
}

func TestFormatCentres_NeverNil(t *testing.T) {
	assert.NotNil(t, FormatCentres(nil))
	assert.Empty(t, FormatCentres(nil))
}
