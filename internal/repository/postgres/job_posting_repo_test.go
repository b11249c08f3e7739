package postgres_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobextract/internal/domain"
	"jobextract/internal/repository/postgres"
)

func TestInsertQuery_FollowsCanonicalColumnOrder(t *testing.T) {
	q := postgres.InsertQuery
	assert.True(t, strings.HasPrefix(q, "INSERT INTO job_postings (id, created_at, file_name, position, classcode,"))
	assert.Contains(t, q, "application_location) VALUES ($1, $2, $3,")
	assert.True(t, strings.HasSuffix(q, "$18)"))
	assert.Equal(t, len(domain.Columns)+2, strings.Count(q, "$"))
}
