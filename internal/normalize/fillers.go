package normalize

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultFillers returns the built-in spoken-discourse filler set used when
// no stopword file is configured. The persisted stopwords.txt extends this
// list and is the human-editable source of truth for a deployment.
func DefaultFillers() []string {
	return []string{
		"um", "uh", "uhm", "hmm", "ah", "oh", "hey",
		"okay", "alright", "yeah", "yep", "nope",
		"gonna", "wanna", "kinda", "sorta",
		"like", "basically", "literally", "actually", "totally",
	}
}

// LoadFillers reads a line-delimited stopword file: one token per line,
// UTF-8, blank lines and '#' comments ignored, case-insensitive.
func LoadFillers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopword file: %w", err)
	}
	defer f.Close()

	var fillers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fillers = append(fillers, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stopword file: %w", err)
	}
	return fillers, nil
}
