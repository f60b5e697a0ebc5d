package core

// error_messages.go maps errors to user-facing messages with support codes.
//
// Codes are grouped by category:
//
//	GRID001 - Grid not found           (ErrGridNotFound)
//	GRID002 - Index out of range       (grid.ErrIndexOutOfRange)
//	GRID003 - Invalid request          (grid.ErrInvalidArgument)
//	GRID004 - Cell is empty            (grid.ErrEmptyCell)
//
//	LOAD001 - Malformed record         (grid.ErrMalformedRecord)
//	LOAD002 - Value not convertible    (grid.ErrValueConversion)
//	LOAD003 - Unknown column type      ("unknown parser")
//
//	RES001  - Resource not found       (resource.ErrNotFound)
//	RES002  - Read or write failed     (grid.ErrResourceIO)
//	RES003  - Sheet not found          (xlsx.ErrNoSheet)
//
//	STORE001 - Snapshot not found      (store.ErrNotFound)
//	STORE002 - Store unavailable       ("connection refused")
//
//	IMP001  - System busy              (ErrTooManyImports)
//	IMP002  - Import too large         (ErrImportTooLarge)
//	IMP003  - Request cancelled        (context.Canceled)
//	IMP004  - Request timed out        (context.DeadlineExceeded)
//
//	RATE001 - Rate limited             ("rate limit")
//
//	ERR000  - Unknown error; check the server log for the technical error.
//
// Rules are tried in order and the first match wins. A rule matches by
// errors.Is against its sentinel, or, for errors that only exist as text
// (driver and transport failures), by a case-insensitive substring.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/resource"
	"github.com/JonMunkholm/gridtable/internal/store"
	"github.com/JonMunkholm/gridtable/internal/xlsx"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorRule struct {
	target  error
	pattern string
	msg     UserMessage
}

func (r errorRule) matches(err error, lower string) bool {
	if r.target != nil && errors.Is(err, r.target) {
		return true
	}
	return r.pattern != "" && strings.Contains(lower, r.pattern)
}

var errorRules = []errorRule{
	// Lookups
	{target: store.ErrNotFound, msg: UserMessage{
		Message: "Snapshot not found",
		Action:  "List snapshots to find a valid id",
		Code:    "STORE001",
	}},
	{target: ErrGridNotFound, msg: UserMessage{
		Message: "Grid not found",
		Action:  "The grid may have been closed. Import it again or open a snapshot",
		Code:    "GRID001",
	}},

	// Import admission
	{target: ErrTooManyImports, msg: UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{target: ErrImportTooLarge, msg: UserMessage{
		Message: "Import exceeds the maximum size",
		Action:  "Split the data into smaller files",
		Code:    "IMP002",
	}},

	// Loading
	{pattern: "unknown parser", msg: UserMessage{
		Message: "Unknown column type in schema",
		Action:  "Use string, double, integer, long or boolean",
		Code:    "LOAD003",
	}},
	{target: xlsx.ErrNoSheet, msg: UserMessage{
		Message: "Sheet not found in workbook",
		Action:  "Check the sheet name",
		Code:    "RES003",
	}},
	{target: grid.ErrMalformedRecord, msg: UserMessage{
		Message: "A line has the wrong number of fields",
		Action:  "Check the separator and that every line has one field per column",
		Code:    "LOAD001",
	}},
	{target: grid.ErrValueConversion, msg: UserMessage{
		Message: "A value does not match its column type",
		Action:  "Fix the value or change the column type in the schema",
		Code:    "LOAD002",
	}},

	// Grid access
	{target: grid.ErrEmptyCell, msg: UserMessage{
		Message: "The cell is empty",
		Action:  "Set a value before reading it as a typed value",
		Code:    "GRID004",
	}},
	{target: grid.ErrIndexOutOfRange, msg: UserMessage{
		Message: "Row or column index is out of range",
		Action:  "Use an index below the grid's current size",
		Code:    "GRID002",
	}},

	// Resources
	{target: resource.ErrNotFound, msg: UserMessage{
		Message: "Resource not found",
		Action:  "Check the name or URL",
		Code:    "RES001",
	}},
	{target: grid.ErrResourceIO, msg: UserMessage{
		Message: "Reading or writing data failed",
		Action:  "Please try again",
		Code:    "RES002",
	}},

	{target: grid.ErrInvalidArgument, msg: UserMessage{
		Message: "The request is missing or has an invalid value",
		Action:  "Check the request parameters",
		Code:    "GRID003",
	}},

	// Request lifecycle
	{target: context.Canceled, msg: UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "IMP003",
	}},
	{target: context.DeadlineExceeded, msg: UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller import or try again later",
		Code:    "IMP004",
	}},

	// Driver and transport text
	{pattern: "connection refused", msg: UserMessage{
		Message: "Unable to reach the snapshot store",
		Action:  "Please try again in a few moments",
		Code:    "STORE002",
	}},
	{pattern: "rate limit", msg: UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no rule matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message. A nil error maps
// to the zero UserMessage.
//
//	msg := MapError(&grid.RecordError{Row: 1, Fields: 2, Want: 3})
//	// msg.Code == "LOAD001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	lower := strings.ToLower(err.Error())
	for _, rule := range errorRules {
		if rule.matches(err, lower) {
			return rule.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
