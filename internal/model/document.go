package model

import "time"

// DocumentMeta describes an uploaded source document.
type DocumentMeta struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Option projects the document into a selector entry.
func (d DocumentMeta) Option() DocumentOption {
	return DocumentOption{Value: d.ID, Label: d.FileName}
}

// DocumentPage is one page of the upstream document listing.
type DocumentPage struct {
	Total    int            `json:"total"`
	NextPage *int           `json:"next_page"`
	PrevPage *int           `json:"prev_page"`
	Data     []DocumentMeta `json:"data"`
}

// DocumentOption is a read-only selector entry derived from DocumentMeta.
type DocumentOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
