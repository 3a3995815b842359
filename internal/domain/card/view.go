package card

import "studentclubs/internal/domain/club"

// NotConfiguredStatus is the fetch status that marks an unconfigured card in preview mode.
const NotConfiguredStatus = 404

// LoadStatus mirrors what the data-fetch collaborator reports about the catalog.
type LoadStatus struct {
	Catalog       *club.Catalog
	IsLoading     bool
	IsRefreshing  bool
	IsError       bool
	InPreviewMode bool
	ErrorStatus   int // status code of the last failed fetch, 0 when unknown
}

// View is one of the mutually exclusive card bodies.
type View int

const (
	ViewNone View = iota
	ViewNotConfigured
	ViewLoading
	ViewEmpty
	ViewPopulated
)

var viewNames = map[View]string{
	ViewNone:          "none",
	ViewNotConfigured: "not_configured",
	ViewLoading:       "loading",
	ViewEmpty:         "empty",
	ViewPopulated:     "populated",
}

// String returns the view name used in logs and JSON.
func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return "unknown"
}

// SelectView picks the card body, first match wins:
// not configured, loading, empty, populated. Anything else renders no body.
// INVARIANT: s is not mutated
func SelectView(s LoadStatus) View {
	switch {
	case s.Catalog == nil && s.InPreviewMode && s.ErrorStatus == NotConfiguredStatus:
		return ViewNotConfigured
	case s.Catalog == nil && s.IsLoading:
		return ViewLoading
	case s.Catalog != nil && len(s.Catalog.StudentClubs) == 0:
		return ViewEmpty
	case s.Catalog != nil:
		return ViewPopulated
	}
	return ViewNone
}

// ShowErrorBanner reports whether the persistent fetch-error banner is shown.
// The not-configured case is informational and never raises the banner.
func ShowErrorBanner(s LoadStatus) bool {
	return s.IsError && SelectView(s) != ViewNotConfigured
}
