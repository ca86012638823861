package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL,
  total_price NUMERIC NOT NULL,
  quoted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  spice_id TEXT NOT NULL,
  spice_name TEXT NOT NULL,
  quantity_kg INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, orderType enums.OrderType, status enums.OrderStatus, spiceName string, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		Type:       orderType,
		Status:     status,
		TotalPrice: decimal.NewFromInt(1000),
		CreatedAt:  created,
		UpdatedAt:  created,
		Items: []models.OrderItem{{
			ID:         uuid.New(),
			SpiceID:    uuid.New(),
			SpiceName:  spiceName,
			QuantityKg: 2,
			UnitPrice:  decimal.NewFromInt(500),
			CreatedAt:  created,
			UpdatedAt:  created,
		}},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryFindPendingLocalOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()

	now := time.Now().UTC()
	seedOrder(t, db, customerID, enums.OrderTypeGlobal, enums.OrderStatusRequested, "Mace", now.Add(-time.Hour))
	cart := seedOrder(t, db, customerID, enums.OrderTypeLocal, enums.OrderStatusPending, "Ceylon Cinnamon", now)

	found, err := repo.FindPendingLocalOrder(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Ceylon Cinnamon", found.Items[0].SpiceName)

	_, err = repo.FindPendingLocalOrder(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRepositoryListHistoryExcludesOpenCart(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()

	now := time.Now().UTC()
	seedOrder(t, db, customerID, enums.OrderTypeLocal, enums.OrderStatusPending, "Cloves", now)
	paid := seedOrder(t, db, customerID, enums.OrderTypeLocal, enums.OrderStatusPaid, "Cardamom", now.Add(-2*time.Hour))
	quoted := seedOrder(t, db, customerID, enums.OrderTypeGlobal, enums.OrderStatusQuoted, "Nutmeg", now.Add(-time.Hour))

	history, err := repo.ListHistory(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, quoted.ID, history[0].ID)
	assert.Equal(t, paid.ID, history[1].ID)
}

func TestRepositoryListSalesPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	older := seedOrder(t, db, uuid.New(), enums.OrderTypeLocal, enums.OrderStatusPaid, "Pepper", now.Add(-time.Hour))
	newer := seedOrder(t, db, uuid.New(), enums.OrderTypeGlobal, enums.OrderStatusQuoted, "Cinnamon", now)

	first, err := repo.ListSales(context.Background(), pagination.Params{Limit: 1}, SalesFilters{})
	require.NoError(t, err)
	require.Len(t, first.Orders, 1)
	assert.Equal(t, newer.ID, first.Orders[0].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListSales(context.Background(), pagination.Params{Limit: 1, Cursor: first.NextCursor}, SalesFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, older.ID, second.Orders[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListSalesFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedOrder(t, db, uuid.New(), enums.OrderTypeLocal, enums.OrderStatusPaid, "Black Pepper", now.Add(-time.Minute))
	global := seedOrder(t, db, uuid.New(), enums.OrderTypeGlobal, enums.OrderStatusQuoted, "Ceylon Cinnamon", now)

	byType, err := repo.ListSales(context.Background(), pagination.Params{Limit: 10}, SalesFilters{Type: enums.OrderTypeGlobal})
	require.NoError(t, err)
	require.Len(t, byType.Orders, 1)
	assert.Equal(t, global.ID, byType.Orders[0].ID)

	bySearch, err := repo.ListSales(context.Background(), pagination.Params{Limit: 10}, SalesFilters{Search: "cinnamon"})
	require.NoError(t, err)
	require.Len(t, bySearch.Orders, 1)
	assert.Equal(t, global.ID, bySearch.Orders[0].ID)
	require.Len(t, bySearch.Orders[0].Items, 1)
}

func TestRepositoryUpdateOrderMissing(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	err := repo.UpdateOrder(context.Background(), uuid.New(), map[string]any{"status": enums.OrderStatusPaid})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
