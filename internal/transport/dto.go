package transport

import "github.com/shopserv/shopserv/internal/models"

type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type AddCartRequest struct {
	ItemKind models.ItemKind `json:"item_kind"`
	ItemID   uint            `json:"item_id"`
	Quantity uint            `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity uint `json:"quantity"`
}

type CheckoutRequest struct {
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	ShippingAddress string               `json:"shipping_address"`
	ShippingCity    string               `json:"shipping_city"`
	ShippingState   string               `json:"shipping_state"`
	ShippingZip     string               `json:"shipping_zip"`
	ShippingPhone   string               `json:"shipping_phone"`
	Notes           string               `json:"notes"`
	TermsAccepted   bool                 `json:"terms_accepted"`
}

type StatusUpdateRequest struct {
	Status models.OrderStatus `json:"status"`
}

type ToggleRequest struct {
	IsActive *bool `json:"is_active"`
}

type PageResponse struct {
	Total int64 `json:"total"`
	Items any   `json:"items"`
}
