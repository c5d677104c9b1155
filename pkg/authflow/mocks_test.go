package authflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jobport/jobport/pkg/backendapi"
)

// MockBackend is a testify mock for the Backend interface.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) LoginURL(ctx context.Context, role string) (string, error) {
	args := m.Called(ctx, role)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) ExchangeCode(ctx context.Context, code, role string) (*backendapi.ExchangeResult, error) {
	args := m.Called(ctx, code, role)
	if result := args.Get(0); result != nil {
		return result.(*backendapi.ExchangeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNavigator is a testify mock for the Navigator interface.
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) NavigateTo(url string) error {
	return m.Called(url).Error(0)
}
