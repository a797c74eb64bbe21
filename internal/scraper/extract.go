package scraper

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// portalDateLayout is how the portal renders dates in listing cells.
const portalDateLayout = "02/01/2006"

// RawPosting is one row of the listing table, dates already normalized.
type RawPosting struct {
	Title       string
	ExternalUID string
	EndDate     *time.Time
	PostedDate  time.Time
}

// ParsePostings extracts the listing rows from the postings page markup.
// The table is located by its stable id; each row must carry exactly four
// cells: title, end date, posted date and an action cell whose link ends in
// the external uid. Any structural mismatch or unparseable date fails the
// whole run: a layout change must never be mistaken for an empty listing.
func ParsePostings(markup []byte) ([]RawPosting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	table := doc.Find(`table#job-listings`)
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: table#job-listings not found", ErrParseFailed)
	}

	rows := table.Find("tbody tr")
	out := make([]RawPosting, 0, rows.Length())

	var rowErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() != 4 {
			rowErr = fmt.Errorf("%w: row %d has %d cells, want 4", ErrParseFailed, i+1, cells.Length())
			return false
		}

		title := strings.TrimSpace(cells.Eq(0).Text())

		endDate, err := parsePortalDate(cells.Eq(1).Text())
		if err != nil {
			rowErr = fmt.Errorf("%w: row %d end date: %v", ErrParseFailed, i+1, err)
			return false
		}

		postedDate, err := parsePortalDate(cells.Eq(2).Text())
		if err != nil {
			rowErr = fmt.Errorf("%w: row %d posted date: %v", ErrParseFailed, i+1, err)
			return false
		}
		if postedDate == nil {
			rowErr = fmt.Errorf("%w: row %d has no posted date", ErrParseFailed, i+1)
			return false
		}

		href, ok := cells.Eq(3).Find("a").First().Attr("href")
		if !ok {
			rowErr = fmt.Errorf("%w: row %d action cell has no link", ErrParseFailed, i+1)
			return false
		}
		uid := trailingPathSegment(href)
		if uid == "" {
			rowErr = fmt.Errorf("%w: row %d action link %q has no uid segment", ErrParseFailed, i+1, href)
			return false
		}

		out = append(out, RawPosting{
			Title:       title,
			ExternalUID: uid,
			EndDate:     endDate,
			PostedDate:  *postedDate,
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return out, nil
}

// parsePortalDate normalizes the portal's DD/MM/YYYY cells. An empty cell
// is a legitimately absent date, not an error.
func parsePortalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(portalDateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("bad date %q", raw)
	}
	t = t.UTC()
	return &t, nil
}

func trailingPathSegment(href string) string {
	href = strings.TrimRight(strings.TrimSpace(href), "/")
	if href == "" {
		return ""
	}
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}
