// Package repository holds the MySQL data access layer.  The sentinel
// errors below are shared by every repository so handlers can map
// failures to status codes without knowing which table was involved.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist or is not visible to
// the caller.  Handlers translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller references a resource owned
// by someone else, such as an outfit built from another user's item.
// Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with existing state.
// Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// ErrInvalid is returned for writes that break a data invariant, for
// example a wear record naming both an item and an outfit.  Handlers
// translate it into 400.
var ErrInvalid = errors.New("invalid")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
