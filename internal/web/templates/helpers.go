// Package templates holds the templ components of the web UI. The
// *_templ.go files are generated from the .templ sources by `templ generate`.
package templates

import (
	"time"

	"github.com/JonMunkholm/gridtable/internal/grid"
)

func cellClass(v grid.Value) string {
	switch v.Kind() {
	case grid.KindInt, grid.KindLong, grid.KindFloat, grid.KindDouble:
		return "num"
	case grid.KindEmpty:
		return "empty"
	}
	return "text"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
