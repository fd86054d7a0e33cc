package store

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode lower-casing used for
// case-insensitive search. SQLite's own LOWER only folds ASCII, so "Émilie"
// would never match "émilie".
const foldFunc = "unicode_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case nil:
			return nil, nil
		case string:
			return fold(v), nil
		case []byte:
			return fold(string(v)), nil
		default:
			return v, nil
		}
	})
}

// fold must be applied to both sides of a comparison.
func fold(s string) string { return strings.ToLower(s) }
