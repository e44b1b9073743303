package lubimyczytac

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shelfsync/internal/catalog"
)

var (
	bookURLPattern    = regexp.MustCompile(`/ksiazka/(\d+)`)
	authorURLPattern  = regexp.MustCompile(`/autor/(\d+)`)
	shelvesURLPattern = regexp.MustCompile(`/biblioteczka/lista\?shelfs=(\d+)`)
)

// parseListing extracts books from the HTML fragment embedded in a listing
// response. Rows without a cover image are filler and get skipped.
func parseListing(content, baseURL string) ([]catalog.Book, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	var books []catalog.Book
	doc.Find("div.row").Each(func(_ int, row *goquery.Selection) {
		cover := row.Find("img.img-fluid").First()
		if cover.Length() == 0 {
			return
		}

		var bookHref, title, author string
		var shelves []string
		row.Find("a").Each(func(_ int, link *goquery.Selection) {
			href, ok := link.Attr("href")
			if !ok {
				return
			}
			switch {
			case bookHref == "" && bookURLPattern.MatchString(href):
				bookHref = href
				title = strings.TrimSpace(link.Text())
			case author == "" && authorURLPattern.MatchString(href):
				author = strings.TrimSpace(link.Text())
			case shelvesURLPattern.MatchString(href):
				shelves = append(shelves, strings.TrimSpace(link.Text()))
			}
		})

		match := bookURLPattern.FindStringSubmatch(bookHref)
		if match == nil {
			return
		}

		bookURL := bookHref
		if !strings.Contains(bookURL, baseURL) {
			bookURL = baseURL + bookURL
		}

		book := catalog.Book{
			SourceID: match[1],
			Title:    title,
			URL:      bookURL,
			CoverURL: cover.AttrOr("data-src", ""),
			Shelves:  shelves,
		}
		if author != "" {
			book.Authors = []string{author}
		}
		books = append(books, book)
	})

	return books, nil
}
