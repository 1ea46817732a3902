package api

import "github.com/villagelink/village-backend/internal/village"

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// eventEnvelope wraps payloads published to the live-update channels.
type eventEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type loginRequest struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Role     village.Role `json:"role"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  village.User `json:"user"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type logoutRequest struct {
	Token string `json:"token"`
}

type createNewsRequest struct {
	Title      string               `json:"title"`
	Content    string               `json:"content"`
	Category   village.NewsCategory `json:"category"`
	CoverImage string               `json:"cover_image"`
}

type createOrderRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

type orderResponse struct {
	Success bool `json:"success"`
}

type createPostRequest struct {
	AuthorID int64  `json:"author_id"`
	BoardID  int64  `json:"board_id"`
	Content  string `json:"content"`
}

type likeRequest struct {
	UserID int64 `json:"user_id"`
}

type addCommentRequest struct {
	AuthorID int64  `json:"author_id"`
	Content  string `json:"content"`
}

type createAffairRequest struct {
	ApplicantID int64              `json:"applicant_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        village.AffairType `json:"type"`
}

type updateAffairStatusRequest struct {
	Status village.AffairStatus `json:"status"`
}
