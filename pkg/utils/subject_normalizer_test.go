package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const normalizerConfigPath = "../../config/subject_normalization.yaml"

func TestNewSubjectNormalizer_Success(t *testing.T) {
	normalizer, err := NewSubjectNormalizer(normalizerConfigPath)
	require.NoError(t, err)
	require.NotNil(t, normalizer)
	assert.Contains(t, normalizer.CanonicalSubjects(), "Mathematics")
}

func TestNewSubjectNormalizer_FileNotFound(t *testing.T) {
	normalizer, err := NewSubjectNormalizer("/nonexistent/path/subjects.yaml")
	assert.Error(t, err)
	assert.Nil(t, normalizer)
}

func TestNewSubjectNormalizer_EmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subjects: {}\n"), 0o600))

	_, err := NewSubjectNormalizer(path)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	normalizer, err := NewSubjectNormalizer(normalizerConfigPath)
	require.NoError(t, err)

	testCases := []struct {
		input     string
		canonical string
		ok        bool
	}{
		{"Maths", "Mathematics", true},
		{"  E-Math ", "Elementary Mathematics", true},
		{"maths tuition", "Mathematics", true},
		{"Physics (O Level)", "Physics", true},
		{"Chemistry (IB Diploma HL/SL)", "Chemistry", true},
		{"POA", "Accounting", true},
		{"Creative Writing", "", false},
		{"Primary", "", false},
		{"Underwater Basket Weaving", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			canonical, ok := normalizer.Normalize(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.canonical, canonical)
		})
	}
}

func TestNormalizeAll_DropsNonSubjectsAndDuplicates(t *testing.T) {
	math := "Mathematics"
	normalizer := NewSubjectNormalizerFromConfig(SubjectNormalizationConfig{
		Subjects: map[string]*string{
			"Math":  &math,
			"Maths": &math,
			"Oral":  nil,
		},
	})

	assert.Equal(t, []string{"Mathematics"}, normalizer.NormalizeAll([]string{"Math", "Oral", "Maths", "Art"}))
	assert.Empty(t, normalizer.NormalizeAll(nil))
}
