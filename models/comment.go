package models

import "time"

const (
	DefaultCommentAuthor      = "Anonymous"
	DefaultCommentProjectName = "Unknown Project"
)

// Comment annotates a line of a project's structured content.
type Comment struct {
	ID          string    `json:"id"`
	InternalID  string    `json:"internalId,omitempty"`
	ProjectID   string    `json:"projectId"`
	ProjectName string    `json:"projectName"`
	Content     string    `json:"content"`
	LineNumber  *int      `json:"lineNumber,omitempty"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

var (
	CommentProjectName = Aliases{"projectName"}
	CommentContent     = Aliases{"content"}
	CommentLineNumber  = Aliases{"lineNumber"}
	CommentAuthor      = Aliases{"author"}
)

// NormalizeComment converts a raw comment document into its canonical form.
func NormalizeComment(raw RawRecord) Comment {
	c := Comment{
		ID:          resolveID(raw),
		ProjectName: DefaultCommentProjectName,
		Author:      DefaultCommentAuthor,
		CreatedAt:   raw.timestamp(KeyCreatedAt),
		UpdatedAt:   raw.timestamp(KeyUpdatedAt),
	}
	c.InternalID, _ = ToText(raw[KeyInternalID])
	c.ProjectID, _ = ToText(raw[KeyProjectID])
	c.Content, _ = raw.text(CommentContent)

	if s, ok := raw.text(CommentProjectName); ok {
		c.ProjectName = s
	}
	if s, ok := raw.text(CommentAuthor); ok {
		c.Author = s
	}
	if n, ok := raw.number(CommentLineNumber); ok {
		c.LineNumber = LineNumber(n)
	}

	return c
}

// LineNumber returns a pointer to the integer part of n, or nil when n is
// not a positive line.
func LineNumber(n float64) *int {
	line := whole(n)
	if line < 1 {
		return nil
	}
	return &line
}

// Document is the canonical persisted form of c.
func (c Comment) Document() RawRecord {
	doc := RawRecord{
		KeyID:        c.ID,
		KeyProjectID: c.ProjectID,
	}
	doc[CommentProjectName.Canonical()] = c.ProjectName
	doc[CommentContent.Canonical()] = c.Content
	doc[CommentAuthor.Canonical()] = c.Author
	if c.LineNumber != nil {
		doc[CommentLineNumber.Canonical()] = *c.LineNumber
	}
	if !c.CreatedAt.IsZero() {
		doc[KeyCreatedAt] = c.CreatedAt
	}
	if !c.UpdatedAt.IsZero() {
		doc[KeyUpdatedAt] = c.UpdatedAt
	}
	return doc
}

func (c Comment) ToRaw() RawRecord {
	doc := c.Document()
	if c.InternalID != "" {
		doc[KeyInternalID] = c.InternalID
	}
	return doc
}
