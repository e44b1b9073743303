package nakanapie

// Source is the snapshot/source name for this catalog.
const Source = "nakanapie"

// DefaultBaseURL is the production service address.
const DefaultBaseURL = "https://nakanapie.pl"

// Reading-state kinds the service models. These are the sink-side statuses
// a vocabulary mapping translates shelf names into.
const (
	KindRead       = "read"
	KindReading    = "reading"
	KindWantToRead = "want-to-read"
)

// listRequest is the body of the paginated library search endpoint.
type listRequest struct {
	SelectedLists        []int    `json:"selectedLists"`
	SelectedYears        []int    `json:"selectedYears"`
	SelectedSort         []string `json:"selectedSort"`
	SelectedSystemList   string   `json:"selectedSystemList"`
	SelectedSpecialLists []int    `json:"selectedSpecialLists"`
	Page                 int      `json:"page"`
	Query                string   `json:"query"`
	PerPage              int      `json:"perPage"`
	Update               int      `json:"update"`
}

// listBook is one book row in a listing response.
type listBook struct {
	ID       int      `json:"id"`
	BundleID int      `json:"bundle_id"`
	BookID   int      `json:"book_id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Kind     string   `json:"kind"`
	ISBN     string   `json:"isbn"`
	Lists    []int    `json:"lists"`
}

// listResponse is the paginated listing envelope.
type listResponse struct {
	Books      []listBook `json:"books"`
	Pagination struct {
		Count int `json:"count"`
		Pages int `json:"pages"`
	} `json:"pagination"`
}

// SearchResult carries the internal identifiers needed to create a book
// association, resolved from an exact-match ISBN search.
type SearchResult struct {
	BookID   int    `json:"book_id"`
	BundleID int    `json:"bundle_id"`
	Title    string `json:"title"`
}
