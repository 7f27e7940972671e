package mysql

import (
	"database/sql"

	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// affected turns an UPDATE that touched no row into ErrNotFound.  The
// connection is opened with clientFoundRows=true so that rewriting a row
// with identical values still counts as a match.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
