// Package core defines the fundamental types and errors for FRANK.
package core

import "errors"

// Core errors that can occur across the system
var (
	// Storage errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrMigrationFailed  = errors.New("migration failed")

	// Profile errors
	ErrValueTooShort = errors.New("value too short to remember")

	// Project errors
	ErrProjectNotFound = errors.New("project not found")
	ErrTitleTooShort   = errors.New("project title too short")

	// Agenda errors
	ErrEventNotFound = errors.New("no event with that title")
	ErrInvalidDate   = errors.New("unrecognized date expression")
	ErrInvalidTime   = errors.New("unrecognized time expression")

	// Planner / extractor errors
	ErrNoJSON        = errors.New("no JSON object in model output")
	ErrPlannerSchema = errors.New("planner output violates schema")

	// Generation errors
	ErrLLMUnavailable = errors.New("generation service unavailable")
	ErrEmptyResponse  = errors.New("empty model response")
)
