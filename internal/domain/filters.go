package domain

import (
	"sort"
	"strings"
)

// SupplierCriteria is the directory search form. Zero-valued criteria are
// no-ops; populated criteria are combined with AND.
type SupplierCriteria struct {
	Search                string
	Capabilities          []string
	Certifications        []string
	Industries            []string
	Countries             []string
	Cities                []string
	MinEmployees          *int
	MaxEmployees          *int
	MinYearEstablished    *int
	EmergencyCapability   *bool
	InternationalShipping *bool
}

// IsEmpty reports whether no criterion is set
func (c SupplierCriteria) IsEmpty() bool {
	return c.Search == "" &&
		len(c.Capabilities) == 0 && len(c.Certifications) == 0 &&
		len(c.Industries) == 0 && len(c.Countries) == 0 && len(c.Cities) == 0 &&
		c.MinEmployees == nil && c.MaxEmployees == nil && c.MinYearEstablished == nil &&
		c.EmergencyCapability == nil && c.InternationalShipping == nil
}

// Matches applies every populated criterion to the supplier
func (c SupplierCriteria) Matches(s *Supplier) bool {
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		haystack := strings.ToLower(s.Name + " " + s.CompanyName + " " + s.Description)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if len(c.Capabilities) > 0 && !containsAny(s.Capabilities, c.Capabilities) {
		return false
	}
	if len(c.Certifications) > 0 && !containsAny(s.Certifications, c.Certifications) {
		return false
	}
	if len(c.Industries) > 0 && !containsAny(s.Industries, c.Industries) {
		return false
	}
	if len(c.Countries) > 0 && !containsValue(c.Countries, s.Country) {
		return false
	}
	if len(c.Cities) > 0 && !containsValue(c.Cities, s.City) {
		return false
	}
	if c.MinEmployees != nil && s.EmployeeCount < *c.MinEmployees {
		return false
	}
	if c.MaxEmployees != nil && s.EmployeeCount > *c.MaxEmployees {
		return false
	}
	if c.MinYearEstablished != nil && s.YearEstablished < *c.MinYearEstablished {
		return false
	}
	if c.EmergencyCapability != nil && s.EmergencyCapability != *c.EmergencyCapability {
		return false
	}
	if c.InternationalShipping != nil && s.InternationalShipping != *c.InternationalShipping {
		return false
	}
	return true
}

// FilterSuppliers returns the suppliers matching the criteria, preserving
// input order. Empty criteria return the full input.
func FilterSuppliers(suppliers []Supplier, c SupplierCriteria) []Supplier {
	if c.IsEmpty() {
		return suppliers
	}
	result := make([]Supplier, 0, len(suppliers))
	for i := range suppliers {
		if c.Matches(&suppliers[i]) {
			result = append(result, suppliers[i])
		}
	}
	return result
}

// containsAny reports whether the list shares at least one exact element
// with the wanted set
func containsAny(list []string, wanted []string) bool {
	for _, w := range wanted {
		for _, v := range list {
			if v == w {
				return true
			}
		}
	}
	return false
}

func containsValue(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// ProfileCompletionBucket classifies how filled-in a supplier profile is
type ProfileCompletionBucket string

const (
	ProfileComplete   ProfileCompletionBucket = "complete"
	ProfilePartial    ProfileCompletionBucket = "partial"
	ProfileIncomplete ProfileCompletionBucket = "incomplete"
)

// profileFieldCount is the number of profile fields that count toward
// completion
const profileFieldCount = 8

// ProfileCompletionPercent scores the profile over the required fields.
// Each filled field contributes equally.
func (s *Supplier) ProfileCompletionPercent() int {
	filled := 0
	if strings.TrimSpace(s.CompanyName) != "" {
		filled++
	}
	if strings.TrimSpace(s.Email) != "" {
		filled++
	}
	if strings.TrimSpace(s.Phone) != "" {
		filled++
	}
	if strings.TrimSpace(s.City) != "" {
		filled++
	}
	if strings.TrimSpace(s.Country) != "" {
		filled++
	}
	if len(s.Capabilities) > 0 {
		filled++
	}
	if len(s.Certifications) > 0 {
		filled++
	}
	if strings.TrimSpace(s.Description) != "" {
		filled++
	}
	return filled * 100 / profileFieldCount
}

// BucketForCompletion maps a completion percentage onto a bucket.
// Boundaries are inclusive: 80 is complete, 50 is partial.
func BucketForCompletion(percent int) ProfileCompletionBucket {
	switch {
	case percent >= 80:
		return ProfileComplete
	case percent >= 50:
		return ProfilePartial
	default:
		return ProfileIncomplete
	}
}

// QuoteGroup collects a company's supplier quotes on one RFQ. The
// representative is the cheapest quote; on a price tie the earliest
// encountered quote wins.
type QuoteGroup struct {
	CompanyName    string          `json:"companyName"`
	Representative SupplierQuote   `json:"representative"`
	Quotes         []SupplierQuote `json:"quotes"`
}

// GroupQuotesByCompany buckets quotes per company name, falling back to
// the supplier name when the company is blank. Groups come back sorted by
// their representative's price, cheapest first.
func GroupQuotesByCompany(quotes []SupplierQuote) []QuoteGroup {
	index := make(map[string]int)
	groups := make([]QuoteGroup, 0)

	for _, q := range quotes {
		key := q.CompanyName
		if key == "" {
			key = q.SupplierName
		}
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, QuoteGroup{
				CompanyName:    key,
				Representative: q,
				Quotes:         []SupplierQuote{q},
			})
			continue
		}
		groups[i].Quotes = append(groups[i].Quotes, q)
		if q.Price < groups[i].Representative.Price {
			groups[i].Representative = q
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Representative.Price < groups[b].Representative.Price
	})
	return groups
}

// RFQCriteria filters RFQ lists for the pipeline views
type RFQCriteria struct {
	Search     string
	Status     *RFQStatus
	CustomerID string
}

// Matches applies every populated criterion to the RFQ
func (c RFQCriteria) Matches(r *RFQ) bool {
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		haystack := strings.ToLower(r.ProjectName + " " + r.Material + " " + r.ReferenceNumber)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if c.Status != nil && r.Status != *c.Status {
		return false
	}
	if c.CustomerID != "" && r.CustomerID.String() != c.CustomerID {
		return false
	}
	return true
}
