// Package models defines data structures for the voxrag transcript pipeline.
package models

import "time"

// Transcript is a raw transcript handed to the pipeline by the ingestion
// collaborator. Immutable once created.
type Transcript struct {
	// SourceID identifies the source video (e.g. YouTube video ID).
	SourceID string

	// Text is the raw transcript body (UTF-8, no timestamps).
	Text string

	// Created is the optional publication date of the source video.
	Created *time.Time

	// Metadata carries source enrichment (title, url, channel, summary,
	// topics) through to every chunk unmodified.
	Metadata map[string]string
}
