package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsConnectionError signals a connectivity failure (SQLSTATE class 08) or a closed pool.
func IsConnectionError(err error) bool {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return len(pgerr.Code) == 5 && pgerr.Code[:2] == "08"
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
