// Package parser reads transcript files into the pipeline's input form.
// A transcript file is plain UTF-8 text, optionally preceded by a YAML
// frontmatter block carrying source metadata.
package parser

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voxrag/voxrag/internal/models"
)

// frontmatter is the metadata block accepted at the top of a transcript
// file, delimited by "---" lines.
type frontmatter struct {
	VideoID string   `yaml:"video_id"`
	Title   string   `yaml:"title"`
	URL     string   `yaml:"url"`
	Channel string   `yaml:"channel"`
	Date    string   `yaml:"date"`
	Summary string   `yaml:"summary"`
	Topics  []string `yaml:"topics"`
}

// ParseTranscript parses file content into a Transcript. sourceFallback is
// used as the source ID when the frontmatter has no video_id (callers pass
// the file name stem). Frontmatter is optional; malformed YAML is an error
// rather than silently treated as body text.
func ParseTranscript(content, sourceFallback string) (models.Transcript, error) {
	body := content
	var fm frontmatter

	if strings.HasPrefix(content, "---\n") {
		end := strings.Index(content[4:], "\n---")
		if end > 0 {
			raw := content[4 : 4+end]
			if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
				return models.Transcript{}, fmt.Errorf("parse frontmatter: %w", err)
			}
			body = strings.TrimPrefix(content[4+end+4:], "\n")
		}
	}

	sourceID := fm.VideoID
	if sourceID == "" {
		sourceID = models.Slugify(sourceFallback)
	}

	t := models.Transcript{
		SourceID: sourceID,
		Text:     body,
		Metadata: buildMetadata(fm),
	}

	if fm.Date != "" {
		if ts, err := parseDate(fm.Date); err == nil {
			t.Created = &ts
		}
	}

	return t, nil
}

// buildMetadata flattens frontmatter into the chunk metadata bag. Only
// non-empty fields are carried so stored chunks stay compact.
func buildMetadata(fm frontmatter) map[string]string {
	meta := map[string]string{"source": "youtube_transcript"}
	if fm.VideoID != "" {
		meta["video_id"] = fm.VideoID
	}
	if fm.Title != "" {
		meta["title"] = fm.Title
	}
	if fm.URL != "" {
		meta["url"] = fm.URL
	}
	if fm.Channel != "" {
		meta["channel"] = fm.Channel
	}
	if fm.Date != "" {
		meta["timestamp"] = fm.Date
	}
	if fm.Summary != "" {
		meta["summary"] = fm.Summary
	}
	if len(fm.Topics) > 0 {
		meta["topics"] = strings.Join(fm.Topics, ",")
	}
	return meta
}

// parseDate accepts the date formats seen in exported transcript data.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %s", s)
}
