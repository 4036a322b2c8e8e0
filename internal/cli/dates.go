package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// resolveDate turns a --date value into YYYY-MM-DD in loc. ISO dates pass
// through unchanged; phrases like "yesterday" or "last friday" are resolved
// against now. Empty input stays empty, meaning today.
func resolveDate(input string, now time.Time, loc *time.Location) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", input); err == nil {
		return input, nil
	}

	r, err := dateParser.Parse(input, now.In(loc))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", input, err)
	}
	if r == nil {
		return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD or a phrase like \"yesterday\"", input)
	}
	return r.Time.In(loc).Format("2006-01-02"), nil
}
