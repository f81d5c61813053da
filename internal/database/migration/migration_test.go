package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sentinelQuery = regexp.QuoteMeta("SELECT to_regclass($1) IS NOT NULL")

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger, hook := test.NewNullLogger()

		mock.ExpectQuery(sentinelQuery).WithArgs(sentinelTable).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.NoError(t, EnsureMigrated(ctx, db, logger, "db"))
		assert.Equal(t, "db_migration_skip", hook.LastEntry().Data["event"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs every step in order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger, hook := test.NewNullLogger()

		mock.ExpectQuery(sentinelQuery).WithArgs(sentinelTable).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, step := range steps {
			mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(t, EnsureMigrated(ctx, db, logger, "db"))
		assert.Equal(t, "db_migration_success", hook.LastEntry().Data["event"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step failure stops the run", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger, hook := test.NewNullLogger()

		mock.ExpectQuery(sentinelQuery).WithArgs(sentinelTable).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, logger, "db")
		assert.ErrorContains(t, err, "migration step create_table_documents failed")
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel check failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		logger, _ := test.NewNullLogger()

		mock.ExpectQuery(sentinelQuery).WillReturnError(errors.New("conn reset"))

		err = EnsureMigrated(ctx, db, logger, "db")
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})
}

func TestStepsDocumentTypeUnique(t *testing.T) {
	var found bool
	for _, s := range steps {
		if s.Name == "create_table_documents" {
			found = true
			assert.Contains(t, s.SQL, "UNIQUE (applicant_id, type)")
		}
	}
	assert.True(t, found)
}
