package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pesokrava/catalog/internal/domain"
	"github.com/pesokrava/catalog/internal/pkg/logger"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// MockViewLogRepository is a mock implementation of domain.ViewLogRepository
type MockViewLogRepository struct {
	mock.Mock
}

func (m *MockViewLogRepository) Append(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockViewLogRepository) Query(ctx context.Context, productID int64) ([]domain.ViewLogEntry, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ViewLogEntry), args.Error(1)
}

func (m *MockViewLogRepository) Clear(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func newTestService(products *MockProductRepository, viewLog *MockViewLogRepository) *Service {
	return NewService(products, viewLog, nil, logger.New("test"))
}

func validProduct() *domain.Product {
	return &domain.Product{
		Name:          "Mechanical keyboard",
		Description:   "Tenkeyless, brown switches",
		Price:         129.90,
		Status:        domain.StatusInStock,
		StockQuantity: 12,
	}
}

func strPtr(s string) *string                  { return &s }
func floatPtr(f float64) *float64              { return &f }
func intPtr(i int) *int                        { return &i }
func statusPtr(s domain.Status) *domain.Status { return &s }

func TestService_Create_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	product := validProduct()

	mockRepo.On("Create", mock.Anything, product).Return(nil)

	err := service.Create(context.Background(), product)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockViewLog.AssertNotCalled(t, "Append")
}

func TestService_Create_OutOfStockWithStock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	product := validProduct()
	product.Status = domain.StatusOutOfStock
	product.StockQuantity = 99

	err := service.Create(context.Background(), product)

	assert.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Create_InStockWithoutStock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	product := validProduct()
	product.StockQuantity = 0

	err := service.Create(context.Background(), product)

	assert.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Create_InvalidPrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	product := validProduct()
	product.Price = 0

	err := service.Create(context.Background(), product)

	assert.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Create_UnknownStatus(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	product := validProduct()
	product.Status = domain.Status("discontinued")

	err := service.Create(context.Background(), product)

	assert.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_GetByID_AppendsOneView(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	expected := validProduct()
	expected.ID = 1

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(expected, nil)
	mockViewLog.On("Append", mock.Anything, int64(1)).Return(nil).Once()

	product, err := service.GetByID(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, expected, product)
	mockRepo.AssertExpectations(t)
	mockViewLog.AssertExpectations(t)
}

func TestService_GetByID_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	mockRepo.On("GetByID", mock.Anything, int64(999)).Return(nil, domain.ErrNotFound)

	product, err := service.GetByID(context.Background(), 999)

	assert.Nil(t, product)
	assert.Equal(t, domain.ErrNotFound, err)
	// The view log is never touched for a nonexistent product
	mockViewLog.AssertNotCalled(t, "Append")
}

func TestService_GetByID_AppendFailureDoesNotFailRead(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	expected := validProduct()
	expected.ID = 7

	mockRepo.On("GetByID", mock.Anything, int64(7)).Return(expected, nil)
	mockViewLog.On("Append", mock.Anything, int64(7)).Return(errors.New("redis down"))

	product, err := service.GetByID(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, expected, product)
	mockViewLog.AssertExpectations(t)
}

func TestService_List_AppendsViewPerProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	first := validProduct()
	first.ID = 1
	second := validProduct()
	second.ID = 2
	expected := []*domain.Product{first, second}

	mockRepo.On("List", mock.Anything).Return(expected, nil)
	mockViewLog.On("Append", mock.Anything, int64(1)).Return(nil).Once()
	mockViewLog.On("Append", mock.Anything, int64(2)).Return(nil).Once()

	products, err := service.List(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
	mockViewLog.AssertExpectations(t)
}

func TestService_List_AppendFailureDoesNotAlterResult(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	first := validProduct()
	first.ID = 1
	expected := []*domain.Product{first}

	mockRepo.On("List", mock.Anything).Return(expected, nil)
	mockViewLog.On("Append", mock.Anything, int64(1)).Return(errors.New("redis down"))

	products, err := service.List(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
}

func TestService_Update_NotFoundBeforeValidation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	mockRepo.On("GetByID", mock.Anything, int64(999)).Return(nil, domain.ErrNotFound)

	// An invalid payload must still yield NotFound for a missing id
	patch := domain.ProductPatch{Price: floatPtr(0)}
	product, err := service.Update(context.Background(), 999, patch)

	assert.Nil(t, product)
	assert.Equal(t, domain.ErrNotFound, err)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestService_Update_EmptyPatchIsNoOp(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	existing := validProduct()
	existing.ID = 1

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)

	product, err := service.Update(context.Background(), 1, domain.ProductPatch{})

	assert.NoError(t, err)
	assert.Equal(t, existing, product)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestService_Update_PartialMerge(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	existing := validProduct()
	existing.ID = 1

	updated := *existing
	updated.StockQuantity = 999

	patch := domain.ProductPatch{StockQuantity: intPtr(999)}

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, int64(1), patch).Return(&updated, nil)

	product, err := service.Update(context.Background(), 1, patch)

	assert.NoError(t, err)
	assert.Equal(t, 999, product.StockQuantity)
	assert.Equal(t, existing.Name, product.Name)
	mockRepo.AssertExpectations(t)
}

func TestService_Update_MergedRecordRevalidated(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	existing := validProduct()
	existing.ID = 1 // in_stock with stock 12

	// Setting only the status makes the merged record inconsistent
	patch := domain.ProductPatch{Status: statusPtr(domain.StatusOutOfStock)}

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)

	product, err := service.Update(context.Background(), 1, patch)

	assert.Nil(t, product)
	assert.True(t, domain.IsValidationError(err))
	mockRepo.AssertNotCalled(t, "Update")
}

func TestService_Update_InvalidPrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	existing := validProduct()
	existing.ID = 1

	patch := domain.ProductPatch{Price: floatPtr(0)}

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)

	product, err := service.Update(context.Background(), 1, patch)

	assert.Nil(t, product)
	assert.True(t, domain.IsValidationError(err))
	mockRepo.AssertNotCalled(t, "Update")
}

func TestService_Update_FullPayload(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newTestService(mockRepo, new(MockViewLogRepository))

	existing := validProduct()
	existing.ID = 1

	patch := domain.ProductPatch{
		Name:          strPtr("Renamed"),
		Description:   strPtr("New description"),
		Price:         floatPtr(999.99),
		Status:        statusPtr(domain.StatusInReplacement),
		StockQuantity: intPtr(1),
	}

	updated := patch.Apply(*existing)

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, int64(1), patch).Return(&updated, nil)

	product, err := service.Update(context.Background(), 1, patch)

	assert.NoError(t, err)
	assert.Equal(t, "Renamed", product.Name)
	assert.Equal(t, domain.StatusInReplacement, product.Status)
	mockRepo.AssertExpectations(t)
}

func TestService_Delete_ClearsLogBeforeRow(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	existing := validProduct()
	existing.ID = 1

	var clearedFirst bool
	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	mockViewLog.On("Clear", mock.Anything, int64(1)).Run(func(args mock.Arguments) {
		clearedFirst = true
	}).Return(nil).Once()
	mockRepo.On("Delete", mock.Anything, int64(1)).Run(func(args mock.Arguments) {
		assert.True(t, clearedFirst, "view log must be cleared before the row is deleted")
	}).Return(existing, nil)

	product, err := service.Delete(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, existing, product)
	mockRepo.AssertExpectations(t)
	mockViewLog.AssertExpectations(t)
}

func TestService_Delete_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	mockRepo.On("GetByID", mock.Anything, int64(999)).Return(nil, domain.ErrNotFound)

	product, err := service.Delete(context.Background(), 999)

	assert.Nil(t, product)
	assert.Equal(t, domain.ErrNotFound, err)
	mockViewLog.AssertNotCalled(t, "Clear")
	mockRepo.AssertNotCalled(t, "Delete")
}

func TestService_Delete_ClearFailureStillDeletes(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	existing := validProduct()
	existing.ID = 1

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	mockViewLog.On("Clear", mock.Anything, int64(1)).Return(errors.New("redis down"))
	mockRepo.On("Delete", mock.Anything, int64(1)).Return(existing, nil)

	product, err := service.Delete(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, existing, product)
	mockRepo.AssertExpectations(t)
}

func TestService_ViewReport_DoesNotAppend(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	existing := validProduct()
	existing.ID = 1

	views := []domain.ViewLogEntry{
		{ViewedAt: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)},
		{ViewedAt: time.Date(2024, 12, 20, 1, 0, 0, 0, time.UTC)},
		{ViewedAt: time.Date(2024, 12, 20, 2, 0, 0, 0, time.UTC)},
		{ViewedAt: time.Date(2024, 12, 20, 3, 0, 0, 0, time.UTC)},
	}

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	mockViewLog.On("Query", mock.Anything, int64(1)).Return(views, nil)

	report, err := service.ViewReport(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, existing, report.Product)
	assert.Equal(t, 4, report.NumberOfViews)
	assert.Equal(t, views, report.Views)
	mockViewLog.AssertNotCalled(t, "Append")
}

func TestService_ViewReport_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockViewLog := new(MockViewLogRepository)
	service := newTestService(mockRepo, mockViewLog)

	mockRepo.On("GetByID", mock.Anything, int64(999)).Return(nil, domain.ErrNotFound)

	report, err := service.ViewReport(context.Background(), 999)

	assert.Nil(t, report)
	assert.Equal(t, domain.ErrNotFound, err)
	mockViewLog.AssertNotCalled(t, "Query")
}
