package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

const unicodeLowerFunc = "unicode_lower"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(unicodeLowerFunc, 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("register sqlite function %s: %v", unicodeLowerFunc, err))
	}
}

// unicodeLower pasa a minúsculas con las reglas Unicode de Go, igual que el resto de stores.
func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}
