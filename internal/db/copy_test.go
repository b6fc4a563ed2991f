package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "scraped_candidates", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"scraped_candidates"}, []string{"name", "scraped_id"}).WillReturnResult(3)

	rows := [][]any{{"WALDRON, MARIE", "1"}, {"SMITH, JOHN", "2"}, {"DOE, JANE", "3"}}
	n, err := CopyFrom(context.Background(), mock, "scraped_candidates", []string{"name", "scraped_id"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_SchemaQualified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"calaccess_raw", "form501_filings"}, []string{"filing_id", "filer_id"}).WillReturnResult(2)

	rows := [][]any{{"1", "100"}, {"2", "200"}}
	n, err := CopyFrom(context.Background(), mock, "calaccess_raw.form501_filings", []string{"filing_id", "filer_id"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"scraped_candidates"}, []string{"name"}).WillReturnError(fmt.Errorf("copy failed"))

	rows := [][]any{{"WALDRON, MARIE"}}
	_, err = CopyFrom(context.Background(), mock, "scraped_candidates", []string{"name"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO scraped_candidates")
	assert.NoError(t, mock.ExpectationsWereMet())
}
