package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/storefront/orders-api/internal/core/domain"
	"github.com/storefront/orders-api/internal/core/ports"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id decodes the record", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		created := time.Date(2026, 3, 1, 12, 30, 15, 250*int(time.Millisecond), time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "orders_api.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "alice@example.com"},
			{Key: "role", Value: "admin"},
			{Key: "created_at", Value: created},
		}))

		u, err := repo.FindByID(context.Background(), "u1")
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if u.ID != "u1" || u.Role != domain.RoleAdmin || u.Email != "alice@example.com" {
			t.Fatalf("unexpected user: %+v", u)
		}
		if !u.CreatedAt.Equal(created) {
			t.Fatalf("unexpected created_at: %v", u.CreatedAt)
		}
	})

	mt.Run("missing record is ErrUserNotFound", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "orders_api.users", mtest.FirstBatch))

		if _, err := repo.FindByID(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("record without role decodes with empty role", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "orders_api.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u2"},
			{Key: "username", Value: "legacy"},
		}))

		u, err := repo.FindByID(context.Background(), "u2")
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if u.Role.Valid() {
			t.Fatalf("expected an invalid role, got %q", u.Role)
		}
	})

	mt.Run("duplicate key is ErrUserExists", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		_, err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleUser})
		if !errors.Is(err, domain.ErrUserExists) {
			t.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("create keeps sub-second timestamps", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		now := time.Date(2026, 3, 1, 12, 30, 15, 123456789, time.UTC)

		u, err := repo.Create(context.Background(), &domain.User{
			ID: "u1", Email: "a@example.com", Role: domain.RoleUser, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if !u.CreatedAt.Equal(now) || !u.UpdatedAt.Equal(now) {
			t.Fatalf("expected timestamps %v, got created=%v updated=%v", now, u.CreatedAt, u.UpdatedAt)
		}
	})

	mt.Run("update of unknown id is ErrUserNotFound", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.Update(context.Background(), &domain.User{ID: "ghost", Role: domain.RoleUser})
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestOrderRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "orders_api.orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "o1"},
			{Key: "owner_id", Value: "u1"},
			{Key: "product", Value: "widget"},
			{Key: "quantity", Value: 2},
			{Key: "unit_price", Value: 1.5},
			{Key: "status", Value: "paid"},
		}))

		o, err := repo.FindByID(context.Background(), "o1")
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if o.OwnerID != "u1" || o.Quantity != 2 || o.Status != domain.OrderPaid || o.Total() != 3 {
			t.Fatalf("unexpected order: %+v", o)
		}
	})

	mt.Run("missing order is ErrOrderNotFound", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "orders_api.orders", mtest.FirstBatch))

		if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	mt.Run("second insert under the same idempotency key is ErrDuplicateOrder", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error index: owner_idempotency_key",
		}))

		err := repo.Create(context.Background(), &domain.Order{ID: "o2", OwnerID: "u1", IdempotencyKey: "k1"})
		if !errors.Is(err, domain.ErrDuplicateOrder) {
			t.Fatalf("expected ErrDuplicateOrder, got %v", err)
		}
	})

	mt.Run("find by idempotency key", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "orders_api.orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "o1"},
			{Key: "owner_id", Value: "u1"},
			{Key: "idempotency_key", Value: "k1"},
		}))

		o, err := repo.FindByIdempotencyKey(context.Background(), "u1", "k1")
		if err != nil {
			t.Fatalf("FindByIdempotencyKey returned error: %v", err)
		}
		if o.ID != "o1" || o.IdempotencyKey != "k1" {
			t.Fatalf("unexpected order: %+v", o)
		}
	})

	mt.Run("unknown idempotency key is ErrOrderNotFound", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "orders_api.orders", mtest.FirstBatch))

		if _, err := repo.FindByIdempotencyKey(context.Background(), "u1", "k9"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	mt.Run("delete of unknown id is ErrOrderNotFound", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		if err := repo.Delete(context.Background(), "nope"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	mt.Run("delete by owner reports the count", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		n, err := repo.DeleteByOwner(context.Background(), "u1")
		if err != nil {
			t.Fatalf("DeleteByOwner returned error: %v", err)
		}
		if n != 3 {
			t.Fatalf("expected 3 deleted, got %d", n)
		}
	})

	mt.Run("list pages through the owner's orders", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "orders_api.orders", mtest.FirstBatch, bson.D{{Key: "n", Value: 2}}),
			mtest.CreateCursorResponse(0, "orders_api.orders", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "o2"}, {Key: "owner_id", Value: "u1"}},
				bson.D{{Key: "_id", Value: "o1"}, {Key: "owner_id", Value: "u1"}},
			),
		)

		orders, total, err := repo.List(context.Background(), ports.ListOrdersFilter{OwnerID: "u1", Page: 1, Limit: 20})
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if total != 2 || len(orders) != 2 || orders[0].ID != "o2" {
			t.Fatalf("unexpected page: total=%d orders=%+v", total, orders)
		}
	})
}
