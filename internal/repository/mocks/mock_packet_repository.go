package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimsapi/internal/model"
	"claimsapi/internal/repository"
)

type MockPacketRepository struct {
	mock.Mock
}

func (m *MockPacketRepository) Create(ctx context.Context, p *model.Packet) (*model.Packet, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Packet), args.Error(1)
}

func (m *MockPacketRepository) FindByID(ctx context.Context, id string) (*model.Packet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Packet), args.Error(1)
}

func (m *MockPacketRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Packet], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Packet]), args.Error(1)
}

func (m *MockPacketRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
