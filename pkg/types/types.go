package types

import "time"

// Field describes one property inferred from a sample OData record.
// Role flags are independent; a field may carry several at once.
type Field struct {
	Name          string `json:"original_name"`
	CSharpName    string `json:"csharp_name"`
	DisplayName   string `json:"display_name"`
	Type          string `json:"type"`
	IsPrimaryKey  bool   `json:"is_primary_key"`
	IsDate        bool   `json:"is_date"`
	IsAmount      bool   `json:"is_amount"`
	IsStatus      bool   `json:"is_status"`
	IsUserRelated bool   `json:"is_user_related"`
	IsBoolean     bool   `json:"is_boolean"`
	Description   string `json:"description"`
}

// DocumentInfo holds document-level facts derived from the field list.
type DocumentInfo struct {
	PrimaryKey       *Field  `json:"primary_key"`
	UserFilterFields []Field `json:"user_filter_fields"`
	DatatableFields  []Field `json:"datatable_fields"`
}

// Parameter describes one SOAP function parameter.
type Parameter struct {
	Name        string `json:"name"`
	CSharpName  string `json:"csharp_name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	XMLType     string `json:"xml_type"`
	IsRequired  bool   `json:"is_required"`
	IsArray     bool   `json:"is_array"`
	IsDropdown  bool   `json:"is_dropdown"`
	IsDate      bool   `json:"is_date"`
	IsAmount    bool   `json:"is_amount"`
	Description string `json:"description"`
}

// Session records one generation request.
type Session struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	PageName   string    `json:"page_name"`
	EntityName string    `json:"entity_name"`
	Kind       string    `json:"kind"`
	FieldCount int       `json:"field_count"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Fragment is one emitted code fragment belonging to a session.
type Fragment struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
}
