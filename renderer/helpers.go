package renderer

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sohumt123/Tickker"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// pct formats a percentage with its sign, "n/a" when undefined.
func pct(p tickker.Percent) string {
	if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
		return "n/a"
	}
	return p.SignedString()
}

// seriesTitle is the column title of a comparison series.
func seriesTitle(name string) string {
	switch {
	case name == "portfolio":
		return "Portfolio"
	case strings.HasPrefix(name, "user_"):
		return "User " + strings.TrimPrefix(name, "user_")
	default:
		return strings.ToUpper(name)
	}
}

// reportMarkdown prints the warnings of a report, if any.
func reportMarkdown(w io.Writer, r tickker.Report) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Warnings\n\n")
		if r.Degraded {
			fmt.Fprint(w, "Some data could not be fetched, figures may be incomplete.\n\n")
		}
		for _, msg := range r.Warnings.Strings() {
			fmt.Fprintf(w, "- %s\n", msg)
		}
		return len(r.Warnings) > 0 || r.Degraded
	})
}
