package typesense

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

// CentresCollection is the Typesense collection holding centre documents
const CentresCollection = "tuition_centres"

// CentreCollectionSchema describes a centre document. name and location are
// infix-indexed for substring search; offerings holds "<level>|<subject>"
// pair tokens so a level and subject filter lands on one offering.
func CentreCollectionSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: CentresCollection,
		Fields: []api.Field{
			{Name: "name", Type: "string", Infix: pointer.True()},
			{Name: "location", Type: "string", Infix: pointer.True()},
			{Name: "name_sort", Type: "string", Sort: pointer.True(), Index: pointer.True()},
			{Name: "id_sort", Type: "string", Sort: pointer.True(), Index: pointer.True()},
			{Name: "whatsapp_number", Type: "string", Index: pointer.False(), Optional: pointer.True()},
			{Name: "website", Type: "string", Index: pointer.False(), Optional: pointer.True()},
			{Name: "levels", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "level_ids", Type: "string[]", Index: pointer.False(), Optional: pointer.True()},
			{Name: "subjects", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "subject_ids", Type: "string[]", Index: pointer.False(), Optional: pointer.True()},
			{Name: "offerings", Type: "string[]", Optional: pointer.True()},
			{Name: "offering_count", Type: "int32"},
			{Name: "created_at", Type: "int64"},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}
}

// InitSchema ensures the centres collection exists. With reset set, an
// existing collection is dropped first.
func (c *Client) InitSchema(ctx context.Context, reset bool) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	exists := false
	for _, col := range collections {
		if col.Name == CentresCollection {
			exists = true
			break
		}
	}

	if exists && reset {
		if _, err := c.client.Collection(CentresCollection).Delete(ctx); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
		log.Info().Str("collection", CentresCollection).Msg("dropped Typesense collection")
		exists = false
	}
	if exists {
		log.Debug().Str("collection", CentresCollection).Msg("Typesense collection already exists")
		return nil
	}

	if _, err := c.client.Collections().Create(ctx, CentreCollectionSchema()); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	log.Info().Str("collection", CentresCollection).Msg("created Typesense collection")
	return nil
}
