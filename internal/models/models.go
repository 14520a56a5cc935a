package models

import (
	"time"
)

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleShopOwner Role = "shopowner"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleShopOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	FullName     string    `gorm:"not null"                 json:"full_name"`
	Phone        string    `json:"phone"`
	Role         Role      `gorm:"not null;default:customer" json:"role"`
	IsActive     bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type OTP struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	Email     string    `gorm:"index;not null" json:"email"`
	Code      string    `gorm:"not null"       json:"-"`
	ExpiresAt time.Time `gorm:"not null"       json:"expires_at"`
	Used      bool      `gorm:"default:false"  json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (OTP) TableName() string { return "otps" }

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      Role   `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

// One shop per owner: OwnerID carries a unique index so the schema, not the
// call sites, enforces the cardinality.
type Shop struct {
	ID              uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID         uint    `gorm:"uniqueIndex;not null"     json:"owner_id"`
	Name            string  `gorm:"not null"                 json:"name"`
	Description     string  `json:"description"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	State           string  `json:"state"`
	Pincode         string  `json:"pincode"`
	ContactPhone    string  `json:"contact_phone"`
	ContactEmail    string  `json:"contact_email"`
	ServiceType     string  `json:"service_type"`
	DeliveryCharge  float64 `gorm:"default:0"     json:"delivery_charge"`
	MinOrderAmount  float64 `gorm:"default:0"     json:"min_order_amount"`
	CODAvailable    bool    `gorm:"default:true"  json:"cod_available"`
	UPIID           string  `json:"upi_id"`
	BankName        string  `json:"bank_name"`
	AccountHolder   string  `json:"account_holder"`
	AccountNumber   string  `json:"-"`
	IFSCCode        string  `json:"ifsc_code"`
	IsVerified      bool    `gorm:"default:false" json:"is_verified"`
	IsApproved      bool    `gorm:"default:true"  json:"is_approved"`
	IsActive        bool    `gorm:"default:true"  json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID      uint      `gorm:"index;not null"           json:"shop_id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null;check:price>=0"  json:"price"`
	Stock       uint      `gorm:"default:0"                json:"stock"`
	Category    string    `gorm:"index"                    json:"category"`
	Image       string    `json:"image"`
	IsActive    bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Service struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID      uint      `gorm:"index;not null"           json:"shop_id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null;check:price>=0"  json:"price"`
	Duration    string    `json:"duration"`
	Category    string    `gorm:"index"                    json:"category"`
	Image       string    `json:"image"`
	IsActive    bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemKind discriminates the two purchasable families that share one cart
// and one order-line table.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindService ItemKind = "service"
)

func (k ItemKind) Valid() bool {
	return k == KindProduct || k == KindService
}

type CartItem struct {
	ID         uint     `gorm:"primaryKey"                                        json:"id"`
	CustomerID uint     `gorm:"uniqueIndex:idx_customer_item;not null"            json:"customer_id"`
	ItemKind   ItemKind `gorm:"uniqueIndex:idx_customer_item;not null"            json:"item_kind"`
	ItemID     uint     `gorm:"uniqueIndex:idx_customer_item;not null"            json:"item_id"`
	Quantity   uint     `gorm:"default:1;check:quantity>0"                        json:"quantity"`
	AddedAt    time.Time `gorm:"autoCreateTime"                                   json:"added_at"`
}

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusPending        OrderStatus = "pending"
	StatusPaid           OrderStatus = "paid"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPending, StatusPaid, StatusConfirmed,
		StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	MethodCOD  PaymentMethod = "cod"
	MethodQR   PaymentMethod = "qr"
	MethodCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCOD || m == MethodQR || m == MethodCard
}

type Order struct {
	ID              uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string        `gorm:"uniqueIndex;not null"     json:"order_number"`
	CustomerID      uint          `gorm:"index;not null"           json:"customer_id"`
	TotalAmount     float64       `gorm:"not null"                 json:"total_amount"`
	Status          OrderStatus   `gorm:"not null;default:pending_payment" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"not null;default:pending" json:"payment_status"`
	PaymentMethod   PaymentMethod `gorm:"not null"                 json:"payment_method"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	ShippingAddress string        `gorm:"not null"                 json:"shipping_address"`
	ShippingPhone   string        `json:"shipping_phone"`
	Notes           string        `json:"notes"`
	TermsAccepted   bool          `gorm:"not null"                 json:"terms_accepted"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// Price is a frozen copy taken at commit time, immune to later catalog
// price changes.
type OrderItem struct {
	ID       uint     `gorm:"primaryKey"     json:"id"`
	OrderID  uint     `gorm:"index;not null" json:"order_id"`
	ItemKind ItemKind `gorm:"not null"       json:"item_kind"`
	ItemID   uint     `gorm:"not null"       json:"item_id"`
	ShopID   uint     `gorm:"index;not null" json:"shop_id"`
	Name     string   `gorm:"not null"       json:"name"`
	Quantity uint     `gorm:"not null;check:quantity>0" json:"quantity"`
	Price    float64  `gorm:"not null"       json:"price"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Message   string    `gorm:"not null"       json:"message"`
	IsRead    bool      `gorm:"default:false"  json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every model for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &OTP{}, &RefreshToken{}, &Shop{}, &Product{}, &Service{},
		&CartItem{}, &Order{}, &OrderItem{}, &Notification{},
	}
}
