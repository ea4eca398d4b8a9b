package aqreport

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// Row is one record of one entity type (authority, zone or pollutant),
// keyed by column name. Rows are treated as read-only once retrieved.
type Row map[string]any

// Field looks up a field by name.
func (r Row) Field(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}

// Keys returns the field names of the row, sorted.
func (r Row) Keys() []string {
	keys := lo.Keys(map[string]any(r))
	slices.Sort(keys)
	return keys
}

// Text returns the stable text form of a field, and whether the field exists.
func (r Row) Text(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	return FormatValue(v), true
}

// FormatValue converts a field value to its text form.
// nil and invalid SQL null values render as the empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case driver.Valuer:
		// sql.NullString, sql.NullInt64 and friends
		inner, err := val.Value()
		if err != nil {
			return ""
		}
		if _, loops := inner.(driver.Valuer); loops {
			return fmt.Sprint(inner)
		}
		return FormatValue(inner)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
