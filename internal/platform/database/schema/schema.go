// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names every table and column used by the PostgreSQL repositories.
//
// Queries are assembled with fmt.Sprintf from these definitions so that a
// column rename is a one-line change here and in migrations/.
package schema

import "strings"

// Prefixed returns columns qualified with alias ("m.id, m.name, ...").
func Prefixed(alias string, columns []string) string {
	qualified := make([]string, len(columns))
	for index, column := range columns {
		qualified[index] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}
