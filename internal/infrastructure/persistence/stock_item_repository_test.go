package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// newMockStockItemRepository creates a GormStockItemRepository with a mocked SQL connection
func newMockStockItemRepository(t *testing.T) (*GormStockItemRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockItemRepository(gormDB), mock, mockDB
}

func stockItemRows(itemID, businessID, branchID, productID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "business_id", "branch_id", "product_id",
		"quantity", "reserved_quantity", "unit_cost", "version",
	}).AddRow(
		itemID, businessID, branchID, productID,
		decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(2), 1,
	)
}

// lockNotAvailableError mimics the driver error raised when lock_timeout
// expires while waiting on a row lock.
type lockNotAvailableError struct{}

func (lockNotAvailableError) Error() string    { return "pq: canceling statement due to lock timeout" }
func (lockNotAvailableError) SQLState() string { return sqlStateLockNotAvailable }

func TestGormStockItemRepository_FindByBranchAndProduct(t *testing.T) {
	t.Run("finds the snapshot for a branch-product combination", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		businessID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE business_id = \$1 AND branch_id = \$2 AND product_id = \$3`).
			WithArgs(businessID, branchID, productID, 1).
			WillReturnRows(stockItemRows(itemID, businessID, branchID, productID))

		item, err := repo.FindByBranchAndProduct(context.Background(), businessID, branchID, productID)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, itemID, item.ID)
		assert.Equal(t, "10", item.Quantity.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for a missing combination", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE business_id = \$1 AND branch_id = \$2 AND product_id = \$3`).
			WithArgs(businessID, branchID, productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		item, err := repo.FindByBranchAndProduct(context.Background(), businessID, branchID, productID)

		assert.Error(t, err)
		assert.Nil(t, item)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockItemRepository_FindForUpdate(t *testing.T) {
	t.Run("acquires an exclusive row lock", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		businessID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE business_id = \$1 AND branch_id = \$2 AND product_id = \$3 .* FOR UPDATE`).
			WithArgs(businessID, branchID, productID, 1).
			WillReturnRows(stockItemRows(itemID, businessID, branchID, productID))

		item, err := repo.FindForUpdate(context.Background(), businessID, branchID, productID)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, itemID, item.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("translates a lock timeout to the domain error", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE business_id = \$1 AND branch_id = \$2 AND product_id = \$3 .* FOR UPDATE`).
			WithArgs(businessID, branchID, productID, 1).
			WillReturnError(lockNotAvailableError{})

		item, err := repo.FindForUpdate(context.Background(), businessID, branchID, productID)

		assert.Error(t, err)
		assert.Nil(t, item)
		assert.True(t, errors.Is(err, shared.ErrLockTimeout))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockItemRepository_GetOrCreate(t *testing.T) {
	t.Run("returns the existing snapshot without inserting", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		businessID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE business_id = \$1 AND branch_id = \$2 AND product_id = \$3`).
			WithArgs(businessID, branchID, productID, 1).
			WillReturnRows(stockItemRows(itemID, businessID, branchID, productID))

		item, err := repo.GetOrCreate(context.Background(), businessID, branchID, productID)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, itemID, item.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts a zero-quantity snapshot when missing", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepository(t)
		defer mockDB.Close()

		businessID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE business_id = \$1 AND branch_id = \$2 AND product_id = \$3`).
			WithArgs(businessID, branchID, productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		mock.ExpectExec(`INSERT INTO "stock_items" .* ON CONFLICT \("business_id","branch_id","product_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		item, err := repo.GetOrCreate(context.Background(), businessID, branchID, productID)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, businessID, item.BusinessID)
		assert.True(t, item.Quantity.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-reads the row after losing the insert race", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		businessID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE business_id = \$1 AND branch_id = \$2 AND product_id = \$3`).
			WithArgs(businessID, branchID, productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		// DO NOTHING hit the conflict: zero rows affected.
		mock.ExpectExec(`INSERT INTO "stock_items" .* ON CONFLICT \("business_id","branch_id","product_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE business_id = \$1 AND branch_id = \$2 AND product_id = \$3`).
			WithArgs(businessID, branchID, productID, 1).
			WillReturnRows(stockItemRows(itemID, businessID, branchID, productID))

		item, err := repo.GetOrCreate(context.Background(), businessID, branchID, productID)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, itemID, item.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockItemRepository_Save(t *testing.T) {
	t.Run("saves the snapshot", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepository(t)
		defer mockDB.Close()

		item, err := stock.NewStockItem(uuid.New(), uuid.New(), uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "stock_items" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), item)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockItemRepository_InterfaceCompliance(t *testing.T) {
	repo, _, mockDB := newMockStockItemRepository(t)
	defer mockDB.Close()

	var _ stock.StockItemRepository = repo
}
