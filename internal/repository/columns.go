package repository

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// encodeList stores a string list as a JSON array.  Values are trimmed,
// lower-cased and de-duplicated so tag matching stays case-insensitive.
func encodeList(vals []string) string {
	out := make([]string, 0, len(vals))
	seen := map[string]bool{}
	for _, v := range vals {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	b, _ := json.Marshal(out)
	return string(b)
}

// decodeList is the inverse of encodeList.  Malformed or empty columns
// decode to an empty list.
func decodeList(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullID(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
