package handler

import (
	"github.com/storefront/orders-api/internal/core/domain"
	"github.com/storefront/orders-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createOrderRequest, p domain.Principal, idempotencyKey string) ports.CreateOrderInput {
	return ports.CreateOrderInput{
		Principal:      p,
		Product:        req.Product,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		Currency:       req.Currency,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey,
	}
}

func toUpdateInput(req updateOrderRequest, p domain.Principal, orderID string) ports.UpdateOrderInput {
	in := ports.UpdateOrderInput{
		Principal: p,
		OrderID:   orderID,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		in.Status = &status
	}
	return in
}

func toUpdateUserInput(req updateUserRequest, p domain.Principal, userID string) ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		Principal: p,
		UserID:    userID,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	return in
}

// --- Service result → HTTP response ---

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:        o.ID,
		OwnerID:   o.OwnerID,
		Product:   o.Product,
		Quantity:  o.Quantity,
		UnitPrice: o.UnitPrice,
		Currency:  o.Currency,
		Total:     o.Total(),
		Notes:     o.Notes,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.UTC(),
		UpdatedAt: o.UpdatedAt.UTC(),
		Links: orderLinks{
			Self:   "/v1/orders/" + o.ID,
			Events: "/v1/orders/" + o.ID + "/events",
			Owner:  "/v1/users/" + o.OwnerID,
		},
	}
}

func toListOrdersResponse(r *ports.ListOrdersResult) listOrdersResponse {
	items := make([]orderResponse, 0, len(r.Items))
	for _, o := range r.Items {
		items = append(items, toOrderResponse(o))
	}
	return listOrdersResponse{
		Items: items,
		pageMeta: pageMeta{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toOrderEventsResponse(orderID string, events []domain.OrderEvent) orderEventsResponse {
	out := make([]orderEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, orderEventResponse{
			Action:    string(e.Action),
			ActorID:   e.ActorID,
			Decision:  e.Decision,
			Timestamp: e.Timestamp.UTC(),
		})
	}
	return orderEventsResponse{OrderID: orderID, Events: out}
}

func toListUsersResponse(r *ports.ListUsersResult) listUsersResponse {
	items := r.Items
	if items == nil {
		items = []*domain.User{}
	}
	return listUsersResponse{
		Items: items,
		pageMeta: pageMeta{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}
