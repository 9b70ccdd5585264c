package handler

import (
	"time"

	"github.com/lunchorder/order-system/internal/core/domain"
)

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

type provisionRequest struct {
	Username   string `json:"username"   validate:"required,username,max=64"`
	Password   string `json:"password"   validate:"required,min=4,max=128"`
	Permission int    `json:"permission" validate:"required,permission"`
}

type principalResponse struct {
	Username   string    `json:"username"`
	Permission int       `json:"permission"`
	CreatedAt  time.Time `json:"created_at"`
}

type orderResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	OrderDate string    `json:"order_date"`
	CreatedAt time.Time `json:"created_at"`
}

type viewResponse struct {
	View       string `json:"view"`
	Username   string `json:"username"`
	Permission int    `json:"permission"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:        o.ID,
		Username:  o.Username,
		OrderDate: o.OrderDate,
		CreatedAt: o.CreatedAt,
	}
}

func toPrincipalResponse(p *domain.Principal) principalResponse {
	return principalResponse{
		Username:   p.Username,
		Permission: int(p.Permission),
		CreatedAt:  p.CreatedAt,
	}
}
