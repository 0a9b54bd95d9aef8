package llm

import (
	"errors"
	"strings"
)

// ErrFatalAPI marks provider errors that retrying cannot fix, such as
// exhausted quota or bad credentials.
var ErrFatalAPI = errors.New("fatal API error")

var fatalMarkers = []string{
	"credit balance",
	"rate limit",
	"quota exceeded",
	"billing",
	"invalid api key",
	"authentication failed",
	"unauthorized",
	"401",
	"403",
}

func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// wrapFatalError tags fatal provider errors with ErrFatalAPI so callers
// can stop retrying. Non-fatal errors pass through unchanged.
func wrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isFatalAPIError(err) {
		return errors.Join(ErrFatalAPI, err)
	}
	return err
}
