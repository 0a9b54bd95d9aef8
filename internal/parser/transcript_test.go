package parser

import (
	"strings"
	"testing"
)

func TestParseTranscript_Frontmatter(t *testing.T) {
	content := `---
video_id: dQw4w9WgXcQ
title: How to price your offer
url: https://youtube.com/watch?v=dQw4w9WgXcQ
channel: Alex Hormozi
date: 2023-06-14
topics:
  - pricing
  - offers
---
So the first thing about pricing is that nobody cares about price.
They care about value.`

	tr, err := ParseTranscript(content, "fallback")
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}

	if tr.SourceID != "dQw4w9WgXcQ" {
		t.Errorf("SourceID = %q", tr.SourceID)
	}
	if !strings.HasPrefix(tr.Text, "So the first thing") {
		t.Errorf("body lost frontmatter boundary: %q", tr.Text[:40])
	}
	if strings.Contains(tr.Text, "video_id") {
		t.Error("frontmatter leaked into body")
	}
	if tr.Metadata["title"] != "How to price your offer" {
		t.Errorf("title = %q", tr.Metadata["title"])
	}
	if tr.Metadata["topics"] != "pricing,offers" {
		t.Errorf("topics = %q", tr.Metadata["topics"])
	}
	if tr.Created == nil || tr.Created.Year() != 2023 {
		t.Errorf("Created = %v", tr.Created)
	}
}

func TestParseTranscript_NoFrontmatter(t *testing.T) {
	content := "Just a plain transcript body with no metadata at all."

	tr, err := ParseTranscript(content, "video-42")
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}
	if tr.SourceID != "video-42" {
		t.Errorf("SourceID = %q, want fallback", tr.SourceID)
	}
	if tr.Text != content {
		t.Errorf("Text = %q", tr.Text)
	}
	if tr.Metadata["source"] != "youtube_transcript" {
		t.Errorf("source meta = %q", tr.Metadata["source"])
	}
}

func TestParseTranscript_FallbackSlugified(t *testing.T) {
	tr, err := ParseTranscript("body text", "My Talk (Part 2)")
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}
	if tr.SourceID != "my-talk-part-2" {
		t.Errorf("SourceID = %q, want slugified fallback", tr.SourceID)
	}
}

func TestParseTranscript_MalformedFrontmatter(t *testing.T) {
	content := "---\n: [broken\n---\nbody"
	if _, err := ParseTranscript(content, "x"); err == nil {
		t.Error("expected error for malformed frontmatter")
	}
}
