// Package model defines the in-memory form structure assembled by the builder:
// ordered sections holding ordered, typed fields, plus the FormData and Errors
// side tables keyed by field id. FieldType is a closed set; dispatch sites
// (validation rules, renderer widgets, terminal prompts) switch over it
// exhaustively and reject unknown variants. Ids are strings minted by an
// IDGenerator and share one space across sections and fields.
package model
