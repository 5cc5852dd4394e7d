// Error codes reference
//
// User-facing messages with codes for support reference. Sellers quote the
// code and support staff look it up here.
//
// # Pipeline Errors (PIPE001-PIPE099)
//
// Run-level failures. No output file was committed.
//
//	PIPE001 - Source unreadable: The pricing sheet could not be read
//	          Action: Re-save the sheet as .xlsx or UTF-8 .csv and upload again
//	          Match: ErrSourceUnreadable
//
//	PIPE002 - Missing columns: Required pricing columns were not found
//	          Action: Download the template and keep its column headers
//	          Match: ErrMissingColumns, "missing required column"
//
//	PIPE003 - Output unwritable: The export file could not be saved
//	          Action: Please try again or contact support
//	          Match: ErrOutputUnwritable
//
//	PIPE004 - Cancelled: The export was cancelled before finishing
//	          Action: Start the export again
//	          Match: ErrRunCancelled, "context canceled", "context deadline exceeded"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Split the sheet into smaller files
//	          Match: ErrFileTooLarge, "file too large"
//
//	FILE002 - Invalid sheet: File is not a valid CSV or xlsx workbook
//	          Action: Open the file in Excel and save it again
//	          Match: "parse csv", "open xlsx"
//
//	FILE003 - Unsupported format: Only .csv and .xlsx are accepted
//	          Action: Save the sheet as .xlsx or .csv
//	          Match: ErrUnsupportedFormat
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a pricing sheet to upload
//	          Match: "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Please upload a sheet with product rows
//	          Match: "file is empty", "no header row"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - System busy: Too many exports in progress
//	         Action: Please wait a moment and try again
//	         Match: ErrTooManyExports
//
//	EXP002 - Unknown report format: Report format must be csv or xlsx
//	         Action: Choose csv or xlsx for the rejected rows report
//	         Match: "unknown report format"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Match: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Entries are checked in order and the first match wins. An entry matches
// when errors.Is finds its sentinel in the chain or its pattern appears in
// the lowercased error text. Specific file errors come before the generic
// pipeline kinds, because a *PipelineError wraps both.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern maps a sentinel and/or text patterns to a user message.
type errorPattern struct {
	sentinel error
	patterns []string
	msg      UserMessage
}

func (p errorPattern) matches(err error, text string) bool {
	if p.sentinel != nil && errors.Is(err, p.sentinel) {
		return true
	}
	for _, pat := range p.patterns {
		if strings.Contains(text, pat) {
			return true
		}
	}
	return false
}

var errorPatterns = []errorPattern{
	// File errors first: they arrive wrapped in ErrSourceUnreadable.
	{
		sentinel: ErrFileTooLarge,
		patterns: []string{"file too large"},
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the sheet into smaller files",
			Code:    "FILE001",
		},
	},
	{
		sentinel: ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "Only .csv and .xlsx files are accepted",
			Action:  "Save the sheet as .xlsx or .csv",
			Code:    "FILE003",
		},
	},
	{
		patterns: []string{"parse csv", "open xlsx"},
		msg: UserMessage{
			Message: "File is not a valid CSV or xlsx workbook",
			Action:  "Open the file in Excel and save it again",
			Code:    "FILE002",
		},
	},
	{
		patterns: []string{"no file provided"},
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a pricing sheet to upload",
			Code:    "FILE004",
		},
	},
	{
		patterns: []string{"file is empty", "no header row"},
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a sheet with product rows",
			Code:    "FILE005",
		},
	},

	{
		sentinel: ErrMissingColumns,
		patterns: []string{"missing required column"},
		msg: UserMessage{
			Message: "Required pricing columns were not found",
			Action:  "Download the template and keep its column headers",
			Code:    "PIPE002",
		},
	},
	{
		sentinel: ErrSourceUnreadable,
		msg: UserMessage{
			Message: "The pricing sheet could not be read",
			Action:  "Re-save the sheet as .xlsx or UTF-8 .csv and upload again",
			Code:    "PIPE001",
		},
	},
	{
		sentinel: ErrRunCancelled,
		patterns: []string{"context canceled", "context deadline exceeded"},
		msg: UserMessage{
			Message: "The export was cancelled before finishing",
			Action:  "Start the export again",
			Code:    "PIPE004",
		},
	},
	{
		sentinel: ErrOutputUnwritable,
		msg: UserMessage{
			Message: "The export file could not be saved",
			Action:  "Please try again or contact support",
			Code:    "PIPE003",
		},
	},

	{
		sentinel: ErrTooManyExports,
		msg: UserMessage{
			Message: "System is busy processing other exports",
			Action:  "Please wait a moment and try again",
			Code:    "EXP001",
		},
	},
	{
		patterns: []string{"unknown report format"},
		msg: UserMessage{
			Message: "Report format must be csv or xlsx",
			Action:  "Choose csv or xlsx for the rejected rows report",
			Code:    "EXP002",
		},
	},

	{
		patterns: []string{"rate limit"},
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := svc.Export(ctx, req)
//	msg := MapError(err)
//	// msg.Code == "PIPE002" when the sheet has no "Código SKU" column
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	text := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.matches(err, text) {
			return ep.msg
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return MapError(ErrRunCancelled)
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
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

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
