package ai

import "errors"

// ErrParseFailure reports that a classifier response could not be turned into
// valid metadata after exhausting repair attempts. It is permanent: retrying
// the same excerpt against the same model yields the same malformed output.
var ErrParseFailure = errors.New("ai: classifier response could not be parsed")

// DocumentMetadata is the bibliographic metadata a classifier extracts from a
// document excerpt.
type DocumentMetadata struct {
	// Title of the work as stated in the text, or a best guess from context.
	Title string `json:"title"`

	// Author of the work, or "Desconocido" when the excerpt gives no hint.
	Author string `json:"author"`

	// Category is one of the values in core.Categories.
	Category string `json:"category"`
}
