package mocks

import (
	"context"

	"docvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, in *model.UploadedFile) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

type MockOCRClient struct {
	mock.Mock
}

func (m *MockOCRClient) Recognize(ctx context.Context, fileName string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, data)
	return args.String(0), args.Error(1)
}
