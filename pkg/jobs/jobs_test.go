package jobs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/pkg/jobs"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := jobs.Load()
	require.NoError(t, err)

	t.Run("has pages", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 2, catalog.Pages())
	})

	t.Run("every posting is complete", func(t *testing.T) {
		t.Parallel()

		all := catalog.All()
		require.NotEmpty(t, all)

		seen := make(map[int]bool, len(all))
		for _, job := range all {
			assert.NotZero(t, job.ID)
			assert.NotEmpty(t, job.Title)
			assert.NotEmpty(t, job.Company)
			assert.NotEmpty(t, job.Description)
			assert.False(t, seen[job.ID], "duplicate job id %d", job.ID)
			seen[job.ID] = true
		}
	})

	t.Run("page returns a copy", func(t *testing.T) {
		t.Parallel()

		page := catalog.Page(0)
		require.NotEmpty(t, page)
		original := page[0].Title
		page[0].Title = "mutated"
		assert.Equal(t, original, catalog.Page(0)[0].Title)
	})

	t.Run("out of range pages are empty", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, catalog.Page(-1))
		assert.Nil(t, catalog.Page(99))
	})

	t.Run("must load does not panic", func(t *testing.T) {
		t.Parallel()
		assert.NotPanics(t, func() { jobs.MustLoad() })
	})
}
