package models

// DraftFields holds the structured form input for one drafting request. Every
// field defaults to the empty string; the prompt builder renders explicit
// "none" markers instead of omitting blanks.
type DraftFields struct {
	DocType          string `json:"doc_type"`
	IssuingAuthority string `json:"issuing_authority"`
	Subject          string `json:"subject"`
	ContentSummary   string `json:"content_summary"`
	LegalBasis       string `json:"legal_basis"`
	ExpectedOutcome  string `json:"expected_outcome"`
	Recipients       string `json:"recipients"`
	KeyPoints        string `json:"key_points"`
}

// EncodedAttachment is a transport-ready inline file: base64 payload plus the
// declared media type. Immutable once created, owned by the request that
// includes it, never persisted.
type EncodedAttachment struct {
	Payload   string `json:"payload"`
	MediaType string `json:"media_type"`
}

// SavedDocument is one entry of the drafting history. The JSON field names
// match the format the browser app persisted, so old exports stay readable.
type SavedDocument struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// Unix milliseconds of creation or last refinement.
	Timestamp int64 `json:"timestamp"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one turn of a refinement transcript. Transcripts are scoped
// to a single active document and are not persisted.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
