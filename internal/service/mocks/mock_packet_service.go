package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"claimsapi/internal/model"
	"claimsapi/internal/service"
)

type MockPacketService struct {
	mock.Mock
}

func (m *MockPacketService) Process(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64, opts service.ProcessOptions) (*model.Packet, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Packet), args.Error(1)
}

func (m *MockPacketService) List(ctx context.Context, limit, offset int) (*service.PacketListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PacketListResult), args.Error(1)
}

func (m *MockPacketService) Get(ctx context.Context, id string) (*model.Packet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Packet), args.Error(1)
}
