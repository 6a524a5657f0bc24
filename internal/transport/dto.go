package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type AdminCreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type AdminUpdateUserRequest struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	Role     *models.Role `json:"role"`
}

type CreateArticleRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Condition      string           `json:"condition"`
	Category       string           `json:"category"`
	Stock          *int             `json:"stock"`
	MainImageIndex int              `json:"main_image_index"`
	Images         []string         `json:"images"`
}

// UpdateArticleRequest is a partial update. KeepImages, when present, lists
// the current images to retain; NewImages are appended after them.
type UpdateArticleRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Condition      *string          `json:"condition"`
	Category       *string          `json:"category"`
	Stock          *int             `json:"stock"`
	MainImageIndex *int             `json:"main_image_index"`
	KeepImages     *[]string        `json:"keep_images"`
	NewImages      []string         `json:"new_images"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type AddToCartRequest struct {
	ArticleID uuid.UUID `json:"article_id"`
	Quantity  int       `json:"quantity"`
}

type OrderItemRequest struct {
	ArticleID uuid.UUID `json:"article_id"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderRequest struct {
	Items      []OrderItemRequest `json:"items"`
	TotalPrice *decimal.Decimal   `json:"total_price,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}
