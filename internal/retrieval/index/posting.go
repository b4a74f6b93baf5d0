package index

// Posting is one (document, raw term frequency) entry of a term's postings.
type Posting struct {
	DocID     int `json:"doc_id"`
	Frequency int `json:"frequency"`
}

type PostingList []Posting

type TermEntry struct {
	Term     string
	Postings PostingList
}
