package models

// FieldKind is the closed set of input kinds the form renderer understands.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
)

// FieldSpec describes one form field declaratively. The renderer consumes the
// schema as data; adding a field here is enough to surface it in the UI.
type FieldSpec struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`
	Rows        int       `json:"rows,omitempty"`
	Options     []string  `json:"options,omitempty"`
	// Attachments marks fields that accept an image/PDF file group.
	Attachments bool `json:"attachments,omitempty"`
}

// DocumentTypes is the closed list offered for the document-type selector.
var DocumentTypes = []string{
	"Công văn",
	"Quyết định",
	"Kế hoạch",
	"Báo cáo",
	"Tờ trình",
	"Thông báo",
	"Giấy mời",
	"Biên bản",
}

// DefaultFields returns the initial form values, including the prefilled
// issuing authority and recipient list the app ships with.
func DefaultFields() DraftFields {
	return DraftFields{
		IssuingAuthority: "Ủy ban nhân dân xã X",
		Recipients:       "- Các thôn tổ dân phố\n- Các cơ quan, doanh nghiệp trên địa bàn",
	}
}

// FormSchema is the declarative description of the drafting form.
var FormSchema = []FieldSpec{
	{Name: "doc_type", Label: "Loại văn bản", Kind: KindSelect, Placeholder: "Chọn loại văn bản", Options: DocumentTypes},
	{Name: "issuing_authority", Label: "Cơ quan ban hành", Kind: KindText, Placeholder: "Nhập tên cơ quan ban hành"},
	{Name: "subject", Label: "Trích yếu", Kind: KindTextarea, Placeholder: "V/v ban hành Kế hoạch tổ chức...", Rows: 2},
	{Name: "content_summary", Label: "Sơ lược nội dung cần soạn thảo", Kind: KindTextarea, Placeholder: "Nhập giá trị", Rows: 2},
	{Name: "legal_basis", Label: "Căn cứ ban hành văn bản", Kind: KindTextarea, Placeholder: "Căn cứ Nghị định số..., Căn cứ Quyết định số...", Rows: 4, Attachments: true},
	{Name: "expected_outcome", Label: "Kỳ vọng hiệu quả của văn bản", Kind: KindTextarea, Placeholder: "Nhập giá trị", Rows: 2},
	{Name: "recipients", Label: "Nơi nhận", Kind: KindTextarea, Placeholder: "Nhập nơi nhận văn bản", Rows: 3},
	{Name: "key_points", Label: "Văn bản, tư liệu, số liệu liên quan", Kind: KindTextarea, Placeholder: "Nhập giá trị", Rows: 4, Attachments: true},
}

// AsMap exposes the fields keyed by schema name, for the form renderer.
func (f DraftFields) AsMap() map[string]string {
	return map[string]string{
		"doc_type":          f.DocType,
		"issuing_authority": f.IssuingAuthority,
		"subject":           f.Subject,
		"content_summary":   f.ContentSummary,
		"legal_basis":       f.LegalBasis,
		"expected_outcome":  f.ExpectedOutcome,
		"recipients":        f.Recipients,
		"key_points":        f.KeyPoints,
	}
}

// Set assigns a form value by its schema name. Unknown names are ignored so a
// stale page never breaks submission.
func (f *DraftFields) Set(name, value string) {
	switch name {
	case "doc_type":
		f.DocType = value
	case "issuing_authority":
		f.IssuingAuthority = value
	case "subject":
		f.Subject = value
	case "content_summary":
		f.ContentSummary = value
	case "legal_basis":
		f.LegalBasis = value
	case "expected_outcome":
		f.ExpectedOutcome = value
	case "recipients":
		f.Recipients = value
	case "key_points":
		f.KeyPoints = value
	}
}
