package database

import (
	"testing"

	"sgo/internal/fieldschema"

	"github.com/gosimple/slug"
	"github.com/stretchr/testify/assert"
)

func TestDefaultCostCentersResolveToSchemas(t *testing.T) {
	seen := map[string]bool{}
	for _, seed := range DefaultCostCenters {
		assert.Equal(t, slug.Make(seed.Name), seed.Code, "code of %q", seed.Name)
		_, ok := fieldschema.SchemaFor(seed.Code)
		assert.True(t, ok, "no schema for %s", seed.Code)
		assert.False(t, seen[seed.Code], "duplicate code %s", seed.Code)
		seen[seed.Code] = true
	}
	assert.Len(t, seen, len(fieldschema.Codes()))
}

