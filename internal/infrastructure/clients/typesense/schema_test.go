package typesense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentreCollectionSchema(t *testing.T) {
	schema := CentreCollectionSchema()
	assert.Equal(t, CentresCollection, schema.Name)

	fields := map[string]string{}
	for _, f := range schema.Fields {
		fields[f.Name] = f.Type
		if f.Name == "name" || f.Name == "location" {
			require.NotNil(t, f.Infix, f.Name)
			assert.True(t, *f.Infix, f.Name)
		}
	}
	assert.Equal(t, "string[]", fields["offerings"])
	assert.Equal(t, "string[]", fields["levels"])
	assert.Equal(t, "string[]", fields["subjects"])
	assert.Equal(t, "string", fields["name_sort"])
	assert.Equal(t, "int64", fields["created_at"])
}
