package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingExec records statements and fails those containing fail.
type failingExec struct {
	fail  string
	stmts []string
}

func (f *failingExec) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	f.stmts = append(f.stmts, query)
	if f.fail != "" && strings.Contains(query, f.fail) {
		return nil, errors.New("could not create unique index")
	}
	return nil, nil
}

func TestCreateIndexes(t *testing.T) {
	ctx := context.Background()

	t.Run("all succeed", func(t *testing.T) {
		ex := &failingExec{}
		require.NoError(t, createIndexes(ctx, ex))
		assert.Len(t, ex.stmts, len(constraints)+1)
		assert.Equal(t, resultsSourceIndex, ex.stmts[len(ex.stmts)-1])
	})

	t.Run("constraint failure is logged only", func(t *testing.T) {
		ex := &failingExec{fail: "race_series_races_no_dupes"}
		assert.NoError(t, createIndexes(ctx, ex))
		assert.Len(t, ex.stmts, len(constraints)+1)
	})

	t.Run("results source index failure is returned", func(t *testing.T) {
		ex := &failingExec{fail: "results_source_uidx"}
		err := createIndexes(ctx, ex)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "results_source_uidx")
	})
}
