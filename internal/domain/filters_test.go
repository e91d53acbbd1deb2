package domain

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func testSuppliers() []Supplier {
	return []Supplier{
		{
			Name:                  "Precision Works",
			CompanyName:           "Precision Works GmbH",
			City:                  "Stuttgart",
			Country:               "Germany",
			Capabilities:          pq.StringArray{"cnc_milling", "cnc_turning"},
			Certifications:        pq.StringArray{"ISO9001"},
			Industries:            pq.StringArray{"automotive"},
			EmployeeCount:         120,
			YearEstablished:       1998,
			EmergencyCapability:   true,
			InternationalShipping: true,
		},
		{
			Name:            "Baltic Casting",
			CompanyName:     "Baltic Casting OU",
			City:            "Tallinn",
			Country:         "Estonia",
			Capabilities:    pq.StringArray{"sand_casting"},
			Certifications:  pq.StringArray{"ISO9001", "ISO14001"},
			Industries:      pq.StringArray{"energy"},
			EmployeeCount:   35,
			YearEstablished: 2010,
		},
		{
			Name:            "Rapid Proto Shop",
			Description:     "3D printing and quick-turn machining",
			City:            "Austin",
			Country:         "USA",
			Capabilities:    pq.StringArray{"3d_printing", "cnc_milling"},
			EmployeeCount:   8,
			YearEstablished: 2019,
		},
	}
}

func TestFilterSuppliersEmptyCriteriaReturnsAll(t *testing.T) {
	suppliers := testSuppliers()
	got := FilterSuppliers(suppliers, SupplierCriteria{})
	assert.Len(t, got, 3)
}

func TestFilterSuppliersSearch(t *testing.T) {
	suppliers := testSuppliers()

	got := FilterSuppliers(suppliers, SupplierCriteria{Search: "casting"})
	require.Len(t, got, 1)
	assert.Equal(t, "Baltic Casting", got[0].Name)

	// Search also covers the description
	got = FilterSuppliers(suppliers, SupplierCriteria{Search: "quick-turn"})
	require.Len(t, got, 1)
	assert.Equal(t, "Rapid Proto Shop", got[0].Name)
}

func TestFilterSuppliersListCriteria(t *testing.T) {
	suppliers := testSuppliers()

	// Any overlap on capabilities matches
	got := FilterSuppliers(suppliers, SupplierCriteria{Capabilities: []string{"cnc_milling"}})
	assert.Len(t, got, 2)

	got = FilterSuppliers(suppliers, SupplierCriteria{Certifications: []string{"ISO14001"}})
	require.Len(t, got, 1)
	assert.Equal(t, "Baltic Casting", got[0].Name)

	// Country matching is case-insensitive
	got = FilterSuppliers(suppliers, SupplierCriteria{Countries: []string{"germany"}})
	require.Len(t, got, 1)
	assert.Equal(t, "Precision Works", got[0].Name)
}

func TestFilterSuppliersNumericAndFlagCriteria(t *testing.T) {
	suppliers := testSuppliers()

	got := FilterSuppliers(suppliers, SupplierCriteria{MinEmployees: intPtr(30)})
	assert.Len(t, got, 2)

	got = FilterSuppliers(suppliers, SupplierCriteria{MaxEmployees: intPtr(40)})
	assert.Len(t, got, 2)

	got = FilterSuppliers(suppliers, SupplierCriteria{MinYearEstablished: intPtr(2015)})
	require.Len(t, got, 1)
	assert.Equal(t, "Rapid Proto Shop", got[0].Name)

	got = FilterSuppliers(suppliers, SupplierCriteria{EmergencyCapability: boolPtr(true)})
	require.Len(t, got, 1)
	assert.Equal(t, "Precision Works", got[0].Name)

	// Combined criteria are AND-ed
	got = FilterSuppliers(suppliers, SupplierCriteria{
		Capabilities: []string{"cnc_milling"},
		MinEmployees: intPtr(30),
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Precision Works", got[0].Name)
}

func TestProfileCompletionPercent(t *testing.T) {
	empty := &Supplier{}
	assert.Equal(t, 0, empty.ProfileCompletionPercent())

	full := &Supplier{
		CompanyName:    "Full Profile Inc",
		Email:          "contact@full.example",
		Phone:          "+1 555 0100",
		City:           "Denver",
		Country:        "USA",
		Capabilities:   pq.StringArray{"cnc_milling"},
		Certifications: pq.StringArray{"ISO9001"},
		Description:    "We machine things",
	}
	assert.Equal(t, 100, full.ProfileCompletionPercent())

	// 4 of 8 fields filled
	half := &Supplier{
		CompanyName: "Half Done",
		Email:       "x@y.example",
		City:        "Oslo",
		Country:     "Norway",
	}
	assert.Equal(t, 50, half.ProfileCompletionPercent())

	// Whitespace does not count as filled
	blanks := &Supplier{CompanyName: "   ", Email: "\t"}
	assert.Equal(t, 0, blanks.ProfileCompletionPercent())
}

func TestBucketForCompletion(t *testing.T) {
	assert.Equal(t, ProfileComplete, BucketForCompletion(100))
	assert.Equal(t, ProfileComplete, BucketForCompletion(80))
	assert.Equal(t, ProfilePartial, BucketForCompletion(79))
	assert.Equal(t, ProfilePartial, BucketForCompletion(50))
	assert.Equal(t, ProfileIncomplete, BucketForCompletion(49))
	assert.Equal(t, ProfileIncomplete, BucketForCompletion(0))
}

func TestGroupQuotesByCompany(t *testing.T) {
	quotes := []SupplierQuote{
		{SupplierName: "Alice", CompanyName: "Acme", Price: 900},
		{SupplierName: "Bob", CompanyName: "Acme", Price: 850},
		{SupplierName: "Carol", CompanyName: "Budget Metals", Price: 700},
		{SupplierName: "Dave", CompanyName: "", Price: 1200},
	}

	groups := GroupQuotesByCompany(quotes)
	require.Len(t, groups, 3)

	// Sorted by representative price, cheapest first
	assert.Equal(t, "Budget Metals", groups[0].CompanyName)
	assert.Equal(t, "Acme", groups[1].CompanyName)
	// Blank company falls back to the supplier name
	assert.Equal(t, "Dave", groups[2].CompanyName)

	// Acme's representative is the cheaper of its two quotes
	assert.Equal(t, 850.0, groups[1].Representative.Price)
	assert.Len(t, groups[1].Quotes, 2)
}

func TestGroupQuotesByCompanyTieKeepsFirst(t *testing.T) {
	quotes := []SupplierQuote{
		{SupplierName: "First", CompanyName: "Tied Co", Price: 500, LeadTimeDays: 10},
		{SupplierName: "Second", CompanyName: "Tied Co", Price: 500, LeadTimeDays: 5},
	}

	groups := GroupQuotesByCompany(quotes)
	require.Len(t, groups, 1)
	assert.Equal(t, "First", groups[0].Representative.SupplierName)
}

func TestRFQCriteriaMatches(t *testing.T) {
	rfq := &RFQ{
		ReferenceNumber: "RFQ-2026-0042",
		ProjectName:     "Hydraulic manifold",
		Material:        "aluminum",
		Status:          RFQStatusQuoted,
	}

	assert.True(t, RFQCriteria{}.Matches(rfq))
	assert.True(t, RFQCriteria{Search: "manifold"}.Matches(rfq))
	assert.True(t, RFQCriteria{Search: "0042"}.Matches(rfq))
	assert.False(t, RFQCriteria{Search: "titanium"}.Matches(rfq))

	quoted := RFQStatusQuoted
	declined := RFQStatusDeclined
	assert.True(t, RFQCriteria{Status: &quoted}.Matches(rfq))
	assert.False(t, RFQCriteria{Status: &declined}.Matches(rfq))
}
