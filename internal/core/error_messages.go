package core

// error_messages.go maps errors to messages that can be shown to users.
//
// # Error Codes Reference
//
// Users can quote the code when reporting a problem.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Unsupported format: only csv, xlsx and json files can be loaded
//	          Action: Convert the file to csv, xlsx or json
//	FILE002 - File not found: nothing exists at the given path
//	          Action: Check the path and try again
//	FILE003 - File too large: the file exceeds the configured size limit
//	          Action: Split the file or raise FILES_MAX_SIZE
//	FILE004 - Unreadable file: the content could not be parsed
//	          Action: Check that the file is not corrupt and matches its extension
//	FILE005 - Sheet problem: the worksheet does not exist or holds no data
//	          Action: Pick another sheet
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Export failed: the cleaned file could not be written
//	         Action: Check that the output directory is writable
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No table loaded
//	SES002 - Table not cleaned yet
//	SES003 - Another operation is running
//	SES004 - Nothing exported yet
//
// # Rename Errors (REN001-REN099)
//
//	REN001 - Duplicate column name
//
// # Pattern Matching
//
// Typed and sentinel errors are matched first with errors.Is and errors.As.
// Any other *ReadError, permission problems included, is FILE004. Errors
// that only carry text fall back to case-insensitive substring patterns.

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/JonMunkholm/datatidy/internal/exceltable"
	"github.com/JonMunkholm/datatidy/internal/jsontable"
	"github.com/JonMunkholm/datatidy/internal/table"
)

// UserMessage is a user-facing description of an error.
type UserMessage struct {
	Message string // What went wrong
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgUnsupported = UserMessage{
		Message: "This file type is not supported",
		Action:  "Load a .csv, .xlsx or .json file",
		Code:    "FILE001",
	}
	msgNotFound = UserMessage{
		Message: "The file could not be found",
		Action:  "Check the path and try again",
		Code:    "FILE002",
	}
	msgTooLarge = UserMessage{
		Message: "The file is larger than the configured limit",
		Action:  "Split the file into smaller parts",
		Code:    "FILE003",
	}
	msgUnreadable = UserMessage{
		Message: "The file could not be read",
		Action:  "Check that the file is not corrupt and matches its extension",
		Code:    "FILE004",
	}
	msgSheet = UserMessage{
		Message: "The selected sheet does not exist or holds no data",
		Action:  "Pick another sheet",
		Code:    "FILE005",
	}
	msgExport = UserMessage{
		Message: "The cleaned file could not be written",
		Action:  "Check that the output directory exists and is writable",
		Code:    "EXP001",
	}
	msgNoTable = UserMessage{
		Message: "No table is loaded",
		Action:  "Load a file first",
		Code:    "SES001",
	}
	msgNotCleaned = UserMessage{
		Message: "The table has not been cleaned yet",
		Action:  "Run Clean Data first",
		Code:    "SES002",
	}
	msgBusy = UserMessage{
		Message: "Another operation is still running",
		Action:  "Wait a moment and try again",
		Code:    "SES003",
	}
	msgNoExport = UserMessage{
		Message: "Nothing has been exported yet",
		Action:  "Export the cleaned data first",
		Code:    "SES004",
	}
	msgDuplicateColumn = UserMessage{
		Message: "Two columns would get the same name",
		Action:  "Choose unique column names",
		Code:    "REN001",
	}
)

// errorPattern maps a substring of an error text to a user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched in order; specific patterns come first.
var errorPatterns = []errorPattern{
	{pattern: "zip: not a valid zip file", msg: msgUnreadable},
	{pattern: "invalid character", msg: msgUnreadable},
	{pattern: "unexpected end of json", msg: msgUnreadable},
	{pattern: "wrong number of fields", msg: msgUnreadable},
	{pattern: "no such file", msg: msgNotFound},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message. Unknown errors
// map to the generic ERR000 message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return msgUnsupported
	case errors.Is(err, ErrFileNotFound):
		return msgNotFound
	case errors.Is(err, ErrFileTooLarge):
		return msgTooLarge
	case errors.Is(err, ErrNoTable):
		return msgNoTable
	case errors.Is(err, ErrNotCleaned):
		return msgNotCleaned
	case errors.Is(err, ErrBusy):
		return msgBusy
	case errors.Is(err, ErrNoExport):
		return msgNoExport
	case errors.Is(err, table.ErrDuplicateColumn):
		return msgDuplicateColumn
	case errors.Is(err, exceltable.ErrEmptySheet), errors.Is(err, exceltable.ErrNoSheets):
		return msgSheet
	case errors.As(err, new(exceltable.ErrSheetNotExist)):
		return msgSheet
	case errors.Is(err, jsontable.ErrNotTabular):
		return msgUnreadable
	}

	var writeErr *WriteError
	if errors.As(err, &writeErr) {
		return msgExport
	}
	var readErr *ReadError
	if errors.As(err, &readErr) {
		if errors.Is(err, fs.ErrNotExist) {
			return msgNotFound
		}
		return msgUnreadable
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
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
// the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
