package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/user/skillgen-service/internal/entity"
)

const (
	// DefaultMaxChars keeps the corpus within the model's context window.
	DefaultMaxChars = 100_000
	// PageSeparator marks a document boundary inside the corpus.
	PageSeparator = "\n\n---\n\n"
)

var separatorLen = utf8.RuneCountInString(PageSeparator)

// Aggregate concatenates page contents in crawl order into a corpus of at most
// maxChars characters. Separators count toward the budget. The first page that
// does not fit whole is cut to fill the remaining budget and aggregation stops
// there; Truncated is set whenever any content was cut or left out.
func Aggregate(pages []entity.CrawledPage, maxChars int) entity.AggregatedCorpus {
	var b strings.Builder
	used := 0
	count := 0
	truncated := false

	for _, page := range pages {
		piece := page.Content
		if count > 0 {
			piece = PageSeparator + piece
		}
		n := utf8.RuneCountInString(piece)
		if used+n <= maxChars {
			b.WriteString(piece)
			used += n
			count++
			continue
		}

		truncated = true
		remaining := maxChars - used
		if count > 0 && remaining <= separatorLen {
			break
		}
		b.WriteString(truncateRunes(piece, remaining))
		count++
		break
	}

	return entity.AggregatedCorpus{
		Text:            b.String(),
		Truncated:       truncated,
		SourcePageCount: count,
	}
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
