package village

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type likeKey struct {
	UserID int64
	PostID int64
}

// Store owns all mutable portal state: users, news, products, posts,
// comments, likes, and government affairs. Every mutation is a single
// critical section under one lock; reads take the read lock and recompute
// derived fields (comment counts, liked flags) from current state, never
// from a cached projection.
type Store struct {
	mu     sync.RWMutex
	logger *zap.SugaredLogger
	now    func() time.Time
	nextID int64

	users     map[int64]*User
	usernames map[string]int64 // username -> user id

	news      map[int64]*News
	newsOrder []int64 // newest first

	products     map[int64]*Product
	productOrder []int64 // oldest first, approvals append

	posts     map[int64]*Post
	postOrder []int64 // newest first

	comments     map[int64]*Comment
	commentOrder map[int64][]int64 // post id -> comment ids, newest first

	likes map[likeKey]struct{}

	affairs     map[int64]*Affair
	affairOrder []int64 // newest first
}

// NewStore returns an empty store. Call Seed to load the demo fixtures.
func NewStore(logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		logger:       logger,
		now:          time.Now,
		nextID:       1,
		users:        make(map[int64]*User),
		usernames:    make(map[string]int64),
		news:         make(map[int64]*News),
		products:     make(map[int64]*Product),
		posts:        make(map[int64]*Post),
		comments:     make(map[int64]*Comment),
		commentOrder: make(map[int64][]int64),
		likes:        make(map[likeKey]struct{}),
		affairs:      make(map[int64]*Affair),
	}
}

// allocID must be called with the write lock held.
func (s *Store) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// ---- Users ----

// RegisterUser creates a USER-role account. The password is stored as a
// bcrypt hash even though Login does not currently verify it.
func (s *Store) RegisterUser(ctx context.Context, username, password, phone string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if password == "" {
		return User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usernames[username]; exists {
		return User{}, fmt.Errorf("%w: username %q already taken", ErrConflict, username)
	}

	u := &User{
		ID:           s.allocID(),
		Username:     username,
		Role:         RoleUser,
		Phone:        phone,
		Avatar:       avatarURL(username),
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	s.usernames[username] = u.ID

	s.logger.Infow("user registered", "user_id", u.ID, "username", username)
	return *u, nil
}

// Login returns the account matching username, auto-provisioning a new
// account with the requested role when none exists.
//
// The password is accepted without verification for existing accounts and
// the requested role is honored for new ones, including ADMIN. Both mirror
// the original portal's demo shortcut and are unsafe for real deployments;
// tests pin this behavior so a deliberate fix shows up loudly.
func (s *Store) Login(ctx context.Context, username, password string, role Role) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if role != RoleAdmin {
		role = RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.usernames[username]; ok {
		return *s.users[id], nil
	}

	u := &User{
		ID:        s.allocID(),
		Username:  username,
		Role:      role,
		Avatar:    avatarURL(username),
		CreatedAt: s.now(),
	}
	s.users[u.ID] = u
	s.usernames[username] = u.ID

	s.logger.Warnw("auto-provisioned account on login", "user_id", u.ID, "username", username, "role", role)
	return *u, nil
}

// ListUsers returns all accounts ordered by id.
func (s *Store) ListUsers(ctx context.Context) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetUser returns one account by id.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return *u, nil
}

// DeleteUser removes an account. It is a no-op on unknown ids and does NOT
// cascade: posts, comments, and products authored by the user keep their
// now-dangling references. That matches the behavior the portal shipped
// with; whether it is intentional is an open product question.
func (s *Store) DeleteUser(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return
	}
	delete(s.usernames, u.Username)
	delete(s.users, id)
	s.logger.Infow("user deleted", "user_id", id, "username", u.Username)
}

// ---- Community ----

// ListPosts returns all posts, newest first. CommentCount is recomputed from
// the live comment set on every call; IsLiked is computed for viewerID (0
// means anonymous). LikeCount is the stored counter.
func (s *Store) ListPosts(ctx context.Context, viewerID int64) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, 0, len(s.postOrder))
	for _, id := range s.postOrder {
		p := *s.posts[id]
		p.CommentCount = len(s.commentOrder[id])
		if viewerID != 0 {
			_, p.IsLiked = s.likes[likeKey{UserID: viewerID, PostID: id}]
		}
		out = append(out, p)
	}
	return out
}

// CreatePost inserts a new post at the front of the feed.
func (s *Store) CreatePost(ctx context.Context, authorID, boardID int64, content string) (Post, error) {
	if strings.TrimSpace(content) == "" {
		return Post{}, fmt.Errorf("%w: post content is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Post{
		ID:        s.allocID(),
		AuthorID:  authorID,
		BoardID:   boardID,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.posts[p.ID] = p
	s.postOrder = append([]int64{p.ID}, s.postOrder...)

	s.logger.Infow("post created", "post_id", p.ID, "author_id", authorID, "board_id", boardID)
	return *p, nil
}

// ToggleLike flips the (userID, postID) like. The like set is the source of
// truth for the liked flag; the post's stored counter moves with it and is
// floored at zero.
func (s *Store) ToggleLike(ctx context.Context, postID, userID int64) (LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return LikeResult{}, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	key := likeKey{UserID: userID, PostID: postID}
	if _, liked := s.likes[key]; liked {
		delete(s.likes, key)
		if p.LikeCount > 0 {
			p.LikeCount--
		}
		return LikeResult{Liked: false, Count: p.LikeCount}, nil
	}

	s.likes[key] = struct{}{}
	p.LikeCount++
	return LikeResult{Liked: true, Count: p.LikeCount}, nil
}

// AddComment attaches a comment to a live post, newest first. The post's
// stored comment counter is bumped for consistency, though reads always
// recount from the comment set.
func (s *Store) AddComment(ctx context.Context, postID, authorID int64, content string) (Comment, error) {
	if strings.TrimSpace(content) == "" {
		return Comment{}, fmt.Errorf("%w: comment content is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return Comment{}, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	c := &Comment{
		ID:        s.allocID(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.comments[c.ID] = c
	s.commentOrder[postID] = append([]int64{c.ID}, s.commentOrder[postID]...)
	p.CommentCount++

	return *c, nil
}

// ListComments returns the comments of one post, newest first. A missing or
// deleted post yields an empty list rather than an error.
func (s *Store) ListComments(ctx context.Context, postID int64) []Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.commentOrder[postID]
	out := make([]Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.comments[id])
	}
	return out
}

// DeleteComment removes a comment and decrements the parent post's stored
// counter (floor zero) if the post still exists. Unknown ids are a no-op so
// repeated deletes never surface failures.
func (s *Store) DeleteComment(ctx context.Context, commentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return
	}
	delete(s.comments, commentID)
	s.commentOrder[c.PostID] = removeID(s.commentOrder[c.PostID], commentID)

	if p, ok := s.posts[c.PostID]; ok && p.CommentCount > 0 {
		p.CommentCount--
	}
}

// DeletePost removes a post and cascades to every comment and like that
// references it. Unknown ids are a no-op.
func (s *Store) DeletePost(ctx context.Context, postID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return
	}
	delete(s.posts, postID)
	s.postOrder = removeID(s.postOrder, postID)

	for _, cid := range s.commentOrder[postID] {
		delete(s.comments, cid)
	}
	delete(s.commentOrder, postID)

	for key := range s.likes {
		if key.PostID == postID {
			delete(s.likes, key)
		}
	}

	s.logger.Infow("post deleted", "post_id", postID)
}

// ---- Government affairs ----

// ListAffairs returns all affairs, newest first.
func (s *Store) ListAffairs(ctx context.Context) []Affair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Affair, 0, len(s.affairOrder))
	for _, id := range s.affairOrder {
		out = append(out, *s.affairs[id])
	}
	return out
}

// CreateAffair files a new application with status PENDING.
func (s *Store) CreateAffair(ctx context.Context, applicantID int64, title, description string, typ AffairType) (Affair, error) {
	if strings.TrimSpace(title) == "" {
		return Affair{}, fmt.Errorf("%w: affair title is required", ErrValidation)
	}
	if typ != AffairGeneral && typ != AffairProductListing {
		return Affair{}, fmt.Errorf("%w: unknown affair type %q", ErrValidation, typ)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := &Affair{
		ID:          s.allocID(),
		ApplicantID: applicantID,
		Title:       title,
		Description: description,
		Type:        typ,
		Status:      AffairPending,
		CreatedAt:   s.now(),
	}
	s.affairs[a.ID] = a
	s.affairOrder = append([]int64{a.ID}, s.affairOrder...)

	s.logger.Infow("affair created", "affair_id", a.ID, "applicant_id", applicantID, "type", typ)
	return *a, nil
}

// UpdateAffairStatus drives the affair state machine. APPROVED and REJECTED
// are terminal: updating a terminal affair rewrites the same status and
// changes nothing. Approving a PRODUCT_LISTING affair realizes its embedded
// draft as a new product owned by the applicant; a malformed draft is logged
// and skipped, never blocking the approval itself, because the admin has no
// way to repair the draft after the fact.
func (s *Store) UpdateAffairStatus(ctx context.Context, affairID int64, status AffairStatus) (Affair, error) {
	if !ValidStatus(status) {
		return Affair{}, fmt.Errorf("%w: unknown affair status %q", ErrValidation, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.affairs[affairID]
	if !ok {
		return Affair{}, fmt.Errorf("%w: affair %d", ErrNotFound, affairID)
	}

	if a.Status == AffairApproved || a.Status == AffairRejected {
		return *a, nil
	}

	a.Status = status
	if status == AffairApproved && a.Type == AffairProductListing {
		s.realizeDraft(a)
	}

	s.logger.Infow("affair status updated", "affair_id", affairID, "status", status)
	return *a, nil
}

// realizeDraft creates the product encoded in an approved listing affair.
// Must be called with the write lock held. Best effort only.
func (s *Store) realizeDraft(a *Affair) {
	draft, err := ParseProductDraft(a.Description)
	if err != nil {
		s.logger.Errorw("discarding malformed product draft on approval",
			"affair_id", a.ID, "error", err)
		return
	}
	price, _ := draft.PriceDecimal()
	stock, _ := draft.StockInt()

	p := &Product{
		ID:         s.allocID(),
		SellerID:   a.ApplicantID,
		Name:       draft.Name,
		Price:      price,
		Stock:      stock,
		Category:   draft.Category,
		CoverImage: draft.Image,
		CreatedAt:  s.now(),
	}
	s.products[p.ID] = p
	s.productOrder = append(s.productOrder, p.ID)

	s.logger.Infow("product created from approved affair",
		"affair_id", a.ID, "product_id", p.ID, "seller_id", p.SellerID)
}

// ---- News ----

// ListNews returns all news items, newest first.
func (s *Store) ListNews(ctx context.Context) []News {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]News, 0, len(s.newsOrder))
	for _, id := range s.newsOrder {
		out = append(out, *s.news[id])
	}
	return out
}

// CreateNews publishes a news item at the front of the list.
func (s *Store) CreateNews(ctx context.Context, title, content string, category NewsCategory, coverImage string) (News, error) {
	if strings.TrimSpace(title) == "" {
		return News{}, fmt.Errorf("%w: news title is required", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return News{}, fmt.Errorf("%w: news content is required", ErrValidation)
	}
	if category == "" {
		category = NewsNews
	}
	switch category {
	case NewsNotice, NewsNews, NewsPolicy:
	default:
		return News{}, fmt.Errorf("%w: unknown news category %q", ErrValidation, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := &News{
		ID:          s.allocID(),
		Title:       title,
		Content:     content,
		Category:    category,
		CoverImage:  coverImage,
		PublishedAt: now,
		CreatedAt:   now,
	}
	s.news[n.ID] = n
	s.newsOrder = append([]int64{n.ID}, s.newsOrder...)
	return *n, nil
}

// DeleteNews removes a news item. No-op on unknown ids.
func (s *Store) DeleteNews(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[id]; !ok {
		return
	}
	delete(s.news, id)
	s.newsOrder = removeID(s.newsOrder, id)
}

// ---- Marketplace ----

// ListProducts returns all products in listing order.
func (s *Store) ListProducts(ctx context.Context) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		out = append(out, *s.products[id])
	}
	return out
}

// CreateOrder decrements the stock of each named product by one, floored at
// zero. Unknown product ids are skipped; an order never fails outright.
func (s *Store) CreateOrder(ctx context.Context, productIDs []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range productIDs {
		if p, ok := s.products[id]; ok && p.Stock > 0 {
			p.Stock--
		}
	}
}

// createProduct inserts a product directly; used by Seed.
// Must be called with the write lock held.
func (s *Store) createProduct(sellerID int64, name string, price decimal.Decimal, stock int, category, coverImage string) *Product {
	p := &Product{
		ID:         s.allocID(),
		SellerID:   sellerID,
		Name:       name,
		Price:      price,
		Stock:      stock,
		Category:   category,
		CoverImage: coverImage,
		CreatedAt:  s.now(),
	}
	s.products[p.ID] = p
	s.productOrder = append(s.productOrder, p.ID)
	return p
}

func avatarURL(username string) string {
	return "https://i.pravatar.cc/150?u=" + username
}
