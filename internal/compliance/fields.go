package compliance

import (
	"time"

	"compliancehub/internal/query"
)

// Sort field names accepted by the list endpoints.
const (
	SortByTitle         = "title"
	SortByCategory      = "category"
	SortByEffectiveDate = "effectiveDate"
	SortByLastUpdated   = "lastUpdated"
	SortByDateSubmitted = "dateSubmitted"
)

// PolicyFields adapts Policy to the query engine. Search matches title and
// description.
func PolicyFields() query.Fields[Policy] {
	return query.Fields[Policy]{
		Text: func(p Policy) []string {
			return []string{p.Title, p.Description}
		},
		Category: func(p Policy) string { return p.Category },
		Status:   func(p Policy) string { return p.Status },
		Sort: map[string]query.SortKey[Policy]{
			SortByTitle:         {String: func(p Policy) string { return p.Title }},
			SortByCategory:      {String: func(p Policy) string { return p.Category }},
			SortByEffectiveDate: {Time: func(p Policy) time.Time { return p.EffectiveDate }},
			SortByLastUpdated:   {Time: func(p Policy) time.Time { return p.UpdatedAt }},
		},
	}
}

// ReportFields adapts Report to the query engine. Search matches title,
// internal id and tracking id so admins can paste either reference.
func ReportFields() query.Fields[Report] {
	return query.Fields[Report]{
		Text: func(r Report) []string {
			return []string{r.Title, r.ID, r.TrackingID}
		},
		Category: func(r Report) string { return r.Category },
		Status:   func(r Report) string { return r.Status },
		Sort: map[string]query.SortKey[Report]{
			SortByTitle:         {String: func(r Report) string { return r.Title }},
			SortByCategory:      {String: func(r Report) string { return r.Category }},
			SortByDateSubmitted: {Time: func(r Report) time.Time { return r.DateSubmitted }},
		},
	}
}
