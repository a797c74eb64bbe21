package scraper

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func listingPage(rows string) []byte {
	return []byte(fmt.Sprintf(`<html><body>
		<table id="job-listings">
			<thead><tr><th>Title</th><th>End</th><th>Posted</th><th></th></tr></thead>
			<tbody>%s</tbody>
		</table>
	</body></html>`, rows))
}

func TestParsePostings(t *testing.T) {
	page := listingPage(`
		<tr>
			<td> Backend Engineer </td>
			<td>15/09/2026</td>
			<td>28/08/2026</td>
			<td><a href="/jobs/view/8842">Apply</a></td>
		</tr>
		<tr>
			<td>Data Analyst</td>
			<td></td>
			<td>27/08/2026</td>
			<td><a href="/jobs/view/8850/">Apply</a></td>
		</tr>`)

	got, err := ParsePostings(page)
	if err != nil {
		t.Fatalf("ParsePostings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d postings, want 2", len(got))
	}

	first := got[0]
	if first.Title != "Backend Engineer" {
		t.Errorf("title = %q", first.Title)
	}
	if first.ExternalUID != "8842" {
		t.Errorf("uid = %q", first.ExternalUID)
	}
	wantEnd := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if first.EndDate == nil || !first.EndDate.Equal(wantEnd) {
		t.Errorf("end date = %v, want %v", first.EndDate, wantEnd)
	}
	wantPosted := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if !first.PostedDate.Equal(wantPosted) {
		t.Errorf("posted date = %v, want %v", first.PostedDate, wantPosted)
	}

	second := got[1]
	if second.EndDate != nil {
		t.Errorf("empty end cell should yield nil, got %v", second.EndDate)
	}
	if second.ExternalUID != "8850" {
		t.Errorf("uid with trailing slash = %q, want 8850", second.ExternalUID)
	}
}

func TestParsePostingsEmptyTable(t *testing.T) {
	got, err := ParsePostings(listingPage(""))
	if err != nil {
		t.Fatalf("ParsePostings: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d postings, want 0", len(got))
	}
}

func TestParsePostingsMissingTable(t *testing.T) {
	_, err := ParsePostings([]byte(`<html><body><p>Session expired</p></body></html>`))
	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("err = %v, want ErrParseFailed", err)
	}
}

func TestParsePostingsBadDateAbortsRun(t *testing.T) {
	page := listingPage(`
		<tr>
			<td>Good Row</td>
			<td>15/09/2026</td>
			<td>28/08/2026</td>
			<td><a href="/jobs/view/1">Apply</a></td>
		</tr>
		<tr>
			<td>Bad Row</td>
			<td>2026-09-15</td>
			<td>28/08/2026</td>
			<td><a href="/jobs/view/2">Apply</a></td>
		</tr>`)

	_, err := ParsePostings(page)
	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("err = %v, want ErrParseFailed", err)
	}
}

func TestParsePostingsWrongCellCount(t *testing.T) {
	page := listingPage(`
		<tr>
			<td>Short Row</td>
			<td>15/09/2026</td>
			<td>28/08/2026</td>
		</tr>`)

	_, err := ParsePostings(page)
	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("err = %v, want ErrParseFailed", err)
	}
}

func TestParsePostingsMissingPostedDate(t *testing.T) {
	page := listingPage(`
		<tr>
			<td>No Posted</td>
			<td>15/09/2026</td>
			<td></td>
			<td><a href="/jobs/view/3">Apply</a></td>
		</tr>`)

	_, err := ParsePostings(page)
	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("err = %v, want ErrParseFailed", err)
	}
}

func TestTrailingPathSegment(t *testing.T) {
	cases := map[string]string{
		"/jobs/view/123":   "123",
		"/jobs/view/123/":  "123",
		"123":              "123",
		"":                 "",
		"https://portal.example/jobs/view/77": "77",
	}
	for href, want := range cases {
		if got := trailingPathSegment(href); got != want {
			t.Errorf("trailingPathSegment(%q) = %q, want %q", href, got, want)
		}
	}
}
