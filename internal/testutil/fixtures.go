package testutil

import (
	"time"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
)

// FixtureViewPreference creates a view preference with sensible defaults.
func FixtureViewPreference(view models.ViewID, overrides ...func(*models.ViewPreference)) *models.ViewPreference {
	pref := &models.ViewPreference{
		View:          view,
		PageSize:      25,
		SortColumn:    "asn",
		SortDirection: table.Asc,
		UpdatedAt:     time.Now().UTC(),
	}

	for _, override := range overrides {
		override(pref)
	}

	return pref
}
