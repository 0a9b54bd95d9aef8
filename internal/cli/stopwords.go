package cli

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/voxrag/voxrag/internal/normalize"
	"github.com/voxrag/voxrag/internal/service"
)

var (
	stopwordsOutput  string
	stopwordsSample  int
	stopwordsMinFreq float64
	stopwordsKeep    []string
)

var stopwordsCmd = &cobra.Command{
	Use:   "stopwords <path>...",
	Short: "Generate a filler word list from a transcript corpus",
	Long: `Analyze transcript files and generate a stopword list tailored to the
corpus. High-frequency short words are merged with the built-in spoken
filler set; pass --keep to protect content words from removal.

The output file is line-delimited and can be pointed to with
VOXRAG_STOPWORDS.

Examples:
  voxrag stopwords ./transcripts
  voxrag stopwords ./channel -o fillers.txt --min-freq 0.002
  voxrag stopwords ./talks --keep "business,market,product"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStopwords,
}

func init() {
	stopwordsCmd.Flags().StringVarP(&stopwordsOutput, "output", "o", "stopwords.txt", "output file")
	stopwordsCmd.Flags().IntVar(&stopwordsSample, "sample", 20, "max transcripts to sample")
	stopwordsCmd.Flags().Float64Var(&stopwordsMinFreq, "min-freq", 0.001, "minimum relative frequency for corpus candidates")
	stopwordsCmd.Flags().StringSliceVar(&stopwordsKeep, "keep", nil, "content words to exclude from the list")
}

var wordRe = regexp.MustCompile(`[a-z]+'?[a-z]*`)

func runStopwords(cmd *cobra.Command, args []string) error {
	// CollectFiles only walks the filesystem, no store or embedder needed.
	svc := service.NewIndexService(nil, nil, nil, "", collector)
	files, err := svc.CollectFiles(args, true)
	if err != nil {
		return fmt.Errorf("collect files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No transcript files found.")
		return nil
	}
	if len(files) > stopwordsSample {
		files = files[:stopwordsSample]
	}
	fmt.Printf("Sampling %d transcripts\n", len(files))

	counts := make(map[string]int)
	total := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		for _, w := range wordRe.FindAllString(strings.ToLower(string(data)), -1) {
			if len(w) < 2 {
				continue
			}
			counts[w]++
			total++
		}
	}
	fmt.Printf("Counted %d tokens, %d distinct words\n", total, len(counts))

	// High-frequency candidates: short words above the frequency floor.
	// Longer words are assumed content-bearing and left alone.
	var candidates []string
	for w, n := range counts {
		if len(w) > 6 {
			continue
		}
		if float64(n)/float64(total) >= stopwordsMinFreq {
			candidates = append(candidates, w)
		}
	}
	fmt.Printf("Found %d corpus candidates\n", len(candidates))

	final := make(map[string]bool)
	for _, w := range normalize.DefaultFillers() {
		final[w] = true
	}
	for _, w := range candidates {
		final[w] = true
	}
	for _, w := range stopwordsKeep {
		delete(final, strings.ToLower(strings.TrimSpace(w)))
	}

	words := make([]string, 0, len(final))
	for w := range final {
		words = append(words, w)
	}
	sort.Strings(words)

	var sb strings.Builder
	sb.WriteString("# Generated stopword list, one word per line.\n")
	sb.WriteString("# Lines starting with '#' are ignored.\n")
	for _, w := range words {
		sb.WriteString(w)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(stopwordsOutput, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write stopwords: %w", err)
	}

	fmt.Printf("Wrote %d stopwords to %s\n", len(words), stopwordsOutput)

	if verbose {
		custom := make([]string, 0)
		defaults := normalize.DefaultFillers()
		for _, w := range words {
			if !slices.Contains(defaults, w) {
				custom = append(custom, w)
			}
		}
		fmt.Printf("Corpus additions (%d): %s\n", len(custom), strings.Join(custom, ", "))
	}

	return nil
}
