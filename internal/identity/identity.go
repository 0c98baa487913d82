// Package identity defines the canonical user identifier used as the sole
// equality key across the ban core.
package identity

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is the canonical string form of a user or bot identifier.
type ID string

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}

// Normalize converts a raw identifier into its canonical form.
//
// Integer kinds become their decimal representation. Strings may carry a
// platform prefix delimited by underscores; the canonical form is the last
// segment with surrounding whitespace stripped. Anything else is stringified
// so that normalization never fails on unexpected payloads.
func Normalize(raw any) ID {
	switch v := raw.(type) {
	case nil:
		return ""
	case int:
		return ID(strconv.FormatInt(int64(v), 10))
	case int32:
		return ID(strconv.FormatInt(int64(v), 10))
	case int64:
		return ID(strconv.FormatInt(v, 10))
	case uint:
		return ID(strconv.FormatUint(uint64(v), 10))
	case uint32:
		return ID(strconv.FormatUint(uint64(v), 10))
	case uint64:
		return ID(strconv.FormatUint(v, 10))
	case string:
		if idx := strings.LastIndex(v, "_"); idx >= 0 {
			v = v[idx+1:]
		}
		return ID(strings.TrimSpace(v))
	case ID:
		return Normalize(string(v))
	default:
		return ID(fmt.Sprint(v))
	}
}
