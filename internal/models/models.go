package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Condition string

const (
	ConditionNew      Condition = "new"
	ConditionVeryGood Condition = "very_good"
	ConditionGood     Condition = "good"
	ConditionToRepair Condition = "to_repair"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionVeryGood, ConditionGood, ConditionToRepair:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`
	LastActivity time.Time `json:"last_activity"`
	Cart         *Cart     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	NameKey   string    `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Article struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string          `gorm:"not null" json:"title"`
	Description    string          `gorm:"type:text;not null" json:"description"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Condition      Condition       `gorm:"type:varchar(32);not null" json:"condition"`
	Category       string          `gorm:"index;not null" json:"category"`
	Stock          int             `gorm:"not null" json:"stock"`
	Images         []ArticleImage  `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
	MainImageIndex int             `gorm:"not null" json:"main_image_index"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ImageRefs returns the image references in display order.
func (a Article) ImageRefs() []string {
	refs := make([]string, len(a.Images))
	for i, img := range a.Images {
		refs[i] = img.Ref
	}
	return refs
}

// MainImage resolves images[main_image_index], falling back to the first image.
func (a Article) MainImage() string {
	if a.MainImageIndex >= 0 && a.MainImageIndex < len(a.Images) {
		return a.Images[a.MainImageIndex].Ref
	}
	if len(a.Images) > 0 {
		return a.Images[0].Ref
	}
	return ""
}

func (a *Article) SetImages(refs []string) {
	a.Images = make([]ArticleImage, len(refs))
	for i, ref := range refs {
		a.Images[i] = ArticleImage{ArticleID: a.ID, Position: i, Ref: ref}
	}
}

func (a Article) MarshalJSON() ([]byte, error) {
	type article Article
	return json.Marshal(struct {
		article
		Images    []string `json:"images"`
		MainImage string   `json:"main_image"`
	}{article(a), a.ImageRefs(), a.MainImage()})
}

type ArticleImage struct {
	ID        uint      `gorm:"primaryKey"`
	ArticleID uuid.UUID `gorm:"type:uuid;index;not null"`
	Position  int       `gorm:"not null"`
	Ref       string    `gorm:"index;not null"`
}

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CartID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_article;not null" json:"-"`
	ArticleID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_article;not null" json:"article_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Article   *Article  `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"article,omitempty"`
}

type Order struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Reference  string          `gorm:"uniqueIndex;not null" json:"reference"`
	UserID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Status     OrderStatus     `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// OrderItem is a snapshot of the article at purchase time. ArticleID is kept
// without a foreign key since the article may be deleted afterwards.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	ArticleID uuid.UUID       `gorm:"type:uuid;index;not null" json:"article_id"`
	Title     string          `gorm:"not null" json:"title"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Image     string          `gorm:"index" json:"image"`
}
