// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides quick type-conversion utilities.

It wraps [strconv] to provide fault-tolerant conversions (e.g., returning a
default instead of an error when parsing fails). This is useful in API handler
contexts parsing query parameters.

Do not use this package if distinguishing between malformed data and zero values
is important in your domain logic; use explicit standard libraries instead.
*/
package convert

import (
	"strconv"
)

// ToIntD converts a string to an int, returning the provided default if parsing fails or string is empty.
func ToIntD(str string, def int) int {

	// If the string is empty, return the default value
	if str == "" {
		return def
	}

	// Try to parse the string as an integer
	if v, err := strconv.Atoi(str); err == nil {
		return v
	}

	// If parsing fails, return the default value
	return def
}

// ToBoolPtr parses an optional boolean filter ("true", "1", "false", "0").
// Empty or malformed input yields nil.
func ToBoolPtr(str string) *bool {
	if str == "" {
		return nil
	}

	v, err := strconv.ParseBool(str)
	if err != nil {
		return nil
	}
	return &v
}
