package repository

import (
	"database/sql"
	"time"
)

func sqlNullInt(v int64, valid bool) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: valid} }

func sqlNullTime(t time.Time, valid bool) sql.NullTime { return sql.NullTime{Time: t, Valid: valid} }
