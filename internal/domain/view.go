package domain

import "time"

// ============================================================
// Filter / search
// ============================================================

// SearchField selects which lead attribute the search term is matched against.
type SearchField string

const (
	SearchByName  SearchField = "name"
	SearchByEmail SearchField = "email"
	SearchByPhone SearchField = "phone"
)

// IsValid reports whether f is a supported search field.
func (f SearchField) IsValid() bool {
	return f == SearchByName || f == SearchByEmail || f == SearchByPhone
}

// Placeholder is the hint shown in the search box for the field.
func (f SearchField) Placeholder() string {
	switch f {
	case SearchByName:
		return "Digite o nome..."
	case SearchByEmail:
		return "Digite o email..."
	default:
		return "Digite o telefone (apenas números)..."
	}
}

// FilterState is the operator's current list filter.
type FilterState struct {
	StatusFilter string      `json:"status_filter"`
	SearchField  SearchField `json:"search_field"`
	SearchTerm   string      `json:"search_term"`
	SearchOpen   bool        `json:"search_open"`
}

// DefaultFilter shows every lead, searching by name.
func DefaultFilter() FilterState {
	return FilterState{StatusFilter: StatusAll, SearchField: SearchByName}
}

// ============================================================
// Selection / form workflow
// ============================================================

// SelectionState holds the lead currently inspected in the detail panel.
type SelectionState struct {
	Lead *Lead `json:"lead,omitempty"`
}

// FormMode is the state of the create/edit form.
type FormMode string

const (
	FormClosed   FormMode = "closed"
	FormCreating FormMode = "creating"
	FormEditing  FormMode = "editing"
)

// FormState is the create/edit form workflow state.
type FormState struct {
	Mode        FormMode   `json:"mode"`
	EditingLead *Lead      `json:"editing_lead,omitempty"`
	Draft       LeadFields `json:"draft"`
	Error       string     `json:"error,omitempty"`
	Busy        bool       `json:"busy"`
}

// ViewState is the full, serializable view state of one operator.
type ViewState struct {
	Filter    FilterState    `json:"filter"`
	Selection SelectionState `json:"selection"`
	Form      FormState      `json:"form"`
	Deleting  string         `json:"deleting,omitempty"`
	Notice    string         `json:"notice,omitempty"`
	LoadError string         `json:"load_error,omitempty"`
	LoadedAt  time.Time      `json:"loaded_at"`
}

// ============================================================
// Aggregates
// ============================================================

// Summary holds the dashboard counters.
type Summary struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
}

// Bucket is one slice of the status distribution chart.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// LeadDetail is the display projection of the selected lead.
type LeadDetail struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Source     string `json:"source"`
	StageLabel string `json:"stage"`
	CreatedOn  string `json:"created_on"`
	Notes      string `json:"notes"`
}

// Page is everything needed to render the leads screen.
type Page struct {
	Leads             []Lead      `json:"leads"`
	VisibleCount      int         `json:"visible_count"`
	Summary           Summary     `json:"summary"`
	Histogram         []Bucket    `json:"histogram"`
	Filter            FilterState `json:"filter"`
	StatusOptions     []string    `json:"status_options"`
	SearchPlaceholder string      `json:"search_placeholder"`
	Selected          *LeadDetail `json:"selected,omitempty"`
	Form              FormState   `json:"form"`
	Deleting          string      `json:"deleting,omitempty"`
	Notice            string      `json:"notice,omitempty"`
	LoadError         string      `json:"load_error,omitempty"`
	LoadedAt          time.Time   `json:"loaded_at"`
}
