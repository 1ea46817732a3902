package village

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the account type of a portal user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Board ids used as coarse post categories.
const (
	BoardGeneral int64 = 1
	BoardTrade   int64 = 2
)

// NewsCategory classifies published news items.
type NewsCategory string

const (
	NewsNotice NewsCategory = "NOTICE"
	NewsNews   NewsCategory = "NEWS"
	NewsPolicy NewsCategory = "POLICY"
)

// AffairType distinguishes plain applications from product-listing requests.
type AffairType string

const (
	AffairGeneral        AffairType = "GENERAL"
	AffairProductListing AffairType = "PRODUCT_LISTING"
)

// AffairStatus is the review state of a government affair.
// APPROVED and REJECTED are terminal. PROCESSING exists for forward
// compatibility with multi-step review but no operation currently sets it.
type AffairStatus string

const (
	AffairPending    AffairStatus = "PENDING"
	AffairProcessing AffairStatus = "PROCESSING"
	AffairApproved   AffairStatus = "APPROVED"
	AffairRejected   AffairStatus = "REJECTED"
)

// ValidStatus reports whether s is one of the known affair statuses.
func ValidStatus(s AffairStatus) bool {
	switch s {
	case AffairPending, AffairProcessing, AffairApproved, AffairRejected:
		return true
	}
	return false
}

// User is a portal account. Deleting a user does not cascade to content
// the user authored; dangling author references are tolerated.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// News is a published announcement, news item, or policy explainer.
type News struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Category    NewsCategory `json:"category"`
	CoverImage  string       `json:"cover_image,omitempty"`
	PublishedAt time.Time    `json:"published_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Product is a marketplace listing, created either at seed time or when a
// PRODUCT_LISTING affair is approved.
type Product struct {
	ID         int64           `json:"id"`
	SellerID   int64           `json:"seller_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Category   string          `json:"category"`
	CoverImage string          `json:"cover_image,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Post is a community feed entry.
//
// LikeCount is authoritative stored state maintained by ToggleLike and
// DeletePost. CommentCount and IsLiked are projections recomputed on every
// read; the stored comment counter is kept roughly in sync but is never
// what a read returns.
type Post struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"author_id"`
	BoardID      int64     `json:"board_id"`
	Content      string    `json:"content"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	IsLiked      bool      `json:"is_liked"`
	CreatedAt    time.Time `json:"created_at"`
}

// Comment is attached to exactly one post at creation time.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Affair is a government-service application. For AffairProductListing the
// Description field carries a serialized ProductDraft.
type Affair struct {
	ID          int64        `json:"id"`
	ApplicantID int64        `json:"applicant_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        AffairType   `json:"type"`
	Status      AffairStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

// LikeResult is the outcome of a ToggleLike call.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}
