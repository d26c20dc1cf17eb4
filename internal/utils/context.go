package utils

import "context"

// GetString reads a string context value; ok is false when the key is
// absent or holds another type.
func GetString(ctx context.Context, key any) (string, bool) {
	v := ctx.Value(key)
	s, ok := v.(string)
	return s, ok
}
