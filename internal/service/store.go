// Package service implements the application's business operations over the
// relational store: project lifecycle, message persistence, media tracking,
// sessions, and the agent run loop.
package service

import (
	"fmt"
	"strings"
)

// rebind rewrites ? placeholders to $n for the postgres driver. SQLite
// takes ? natively.
func rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
