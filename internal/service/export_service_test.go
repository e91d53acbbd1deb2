package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newExportService(env *testEnv) *ExportService {
	return NewExportService(env.rfqRepo, env.orderRepo, env.supplierRepo, zap.NewNop())
}

func sheetRows(t *testing.T, svc func() ([][]string, error)) [][]string {
	t.Helper()
	rows, err := svc()
	require.NoError(t, err)
	return rows
}

func TestExportOrdersWorkbook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.seedOrder(t, customerUser(), domain.StageManufacturing, 100)
	env.seedOrder(t, customerUser(), domain.StagePending, 50)

	buf, err := newExportService(env).ExportOrders(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows := sheetRows(t, func() ([][]string, error) { return f.GetRows("Orders") })
	require.Len(t, rows, 3)
	assert.Equal(t, "Order Number", rows[0][0])

	numbers := []string{rows[1][0], rows[2][0]}
	assert.Contains(t, numbers, order.OrderNumber)
}

func TestExportRFQsWorkbook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rfq := env.seedRFQ(t, customerUser(), domain.RFQStatusSubmitted, domain.RFQSourceCustomer)

	buf, err := newExportService(env).ExportRFQs(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows := sheetRows(t, func() ([][]string, error) { return f.GetRows("RFQs") })
	require.Len(t, rows, 2)
	assert.Equal(t, rfq.ReferenceNumber, rows[1][0])
}

func TestExportSuppliersAppliesDirectoryCriteria(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	machining := &domain.Supplier{
		Name:         "Precision Works",
		CompanyName:  "Precision Works GmbH",
		Country:      "Germany",
		Capabilities: pq.StringArray{"cnc_milling", "cnc_turning"},
		IsActive:     true,
	}
	require.NoError(t, env.supplierRepo.Create(ctx, machining))

	casting := &domain.Supplier{
		Name:         "Foundry Co",
		CompanyName:  "Foundry Co AS",
		Country:      "Norway",
		Capabilities: pq.StringArray{"sand_casting"},
		IsActive:     true,
	}
	require.NoError(t, env.supplierRepo.Create(ctx, casting))

	svc := newExportService(env)

	// Unfiltered export carries the whole directory
	buf, err := svc.ExportSuppliers(ctx, domain.SupplierCriteria{})
	require.NoError(t, err)
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	rows := sheetRows(t, func() ([][]string, error) { return f.GetRows("Suppliers") })
	require.NoError(t, f.Close())
	assert.Len(t, rows, 3)

	// The directory search form narrows the export the same way it
	// narrows the listing
	buf, err = svc.ExportSuppliers(ctx, domain.SupplierCriteria{Capabilities: []string{"cnc_milling"}})
	require.NoError(t, err)
	f, err = excelize.OpenReader(buf)
	require.NoError(t, err)
	rows = sheetRows(t, func() ([][]string, error) { return f.GetRows("Suppliers") })
	require.NoError(t, f.Close())
	require.Len(t, rows, 2)
	assert.Equal(t, "Precision Works", rows[1][0])
}
