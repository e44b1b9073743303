package lubimyczytac

// Source is the snapshot/source name for this catalog.
const Source = "lubimyczytac"

// DefaultBaseURL is the production service address.
const DefaultBaseURL = "https://lubimyczytac.pl"

// Shelf names as the service renders them. These are the membership tags a
// vocabulary mapping translates into sink-catalog statuses and lists.
const (
	ShelfRead       = "Przeczytane"
	ShelfOwn        = "Posiadam"
	ShelfWantToRead = "Chcę przeczytać"
	ShelfReading    = "Teraz czytam"
)

// listResponse is the envelope of the getLibraryBooksList endpoint.
// The listing rows come back as an HTML fragment inside a JSON wrapper;
// count and left are served as strings.
type listResponse struct {
	Data struct {
		Content string `json:"content"`
		Count   string `json:"count"`
		Left    string `json:"left"`
	} `json:"data"`
}

// ItemFailure records one book whose identity resolution failed with a
// transport or server error. Collected into the crawl report, never fatal.
type ItemFailure struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Err      string `json:"error"`
}

// CrawlReport summarizes one crawl: page count, how identity keys were
// obtained, and which items failed resolution.
type CrawlReport struct {
	Pages        int
	Books        int
	CacheHits    int
	Resolved     int
	Absent       int
	PageFailures []string
	Failures     []ItemFailure
}
