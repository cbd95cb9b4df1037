package remote

import (
	"regexp"
	"strconv"

	"github.com/leapstack-labs/leapquery/pkg/wire"
)

var (
	placeholderPattern = regexp.MustCompile(`\$(\d+)`)
	bracketedPattern   = regexp.MustCompile(`(?i)\b(limit|offset)\s+\[(\d+)\]`)
)

// Substitute inlines params into query. Every $N with 1 <= N <= len(params)
// is replaced by the literal of params[N-1] in a single pass, so literal text
// is never rescanned. Out-of-range placeholders are left as written. A second
// pass unwraps bracketed row counts such as "LIMIT [25]" or "offset [5]".
//
// The result is only as safe as the text it is applied to; callers run the
// guard on the query first.
func Substitute(query string, params []wire.Value) string {
	out := placeholderPattern.ReplaceAllStringFunc(query, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		return wire.Literal(params[n-1])
	})
	return bracketedPattern.ReplaceAllString(out, "$1 $2")
}
