package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) (model.Payment, error)
	FindByID(ctx context.Context, id int64) (model.Payment, error)
	FindByIDForUpdate(ctx context.Context, id int64) (model.Payment, error)
	ExistsPendingByCartID(ctx context.Context, cartID int64) (bool, error)
	ListByCartID(ctx context.Context, cartID int64) ([]model.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) error
}

type ShipmentRepository interface {
	Create(ctx context.Context, s model.Shipment) (model.Shipment, error)
	ListByCartID(ctx context.Context, cartID int64) ([]model.Shipment, error)
}
