package village

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seed loads the demo dataset the portal ships with: an admin, a villager,
// three news items, two products, two posts, one comment, one like, and one
// pending affair. Safe to call once on an empty store.
func (s *Store) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := func(v string) time.Time {
		t, _ := time.Parse(time.RFC3339, v)
		return t
	}

	admin := &User{
		ID:        s.allocID(),
		Username:  "admin",
		Role:      RoleAdmin,
		Avatar:    avatarURL("admin"),
		CreatedAt: ts("2023-01-01T00:00:00Z"),
	}
	villager := &User{
		ID:        s.allocID(),
		Username:  "villager1",
		Role:      RoleUser,
		Phone:     "13800138000",
		Avatar:    avatarURL("user1"),
		CreatedAt: ts("2023-02-01T00:00:00Z"),
	}
	for _, u := range []*User{admin, villager} {
		s.users[u.ID] = u
		s.usernames[u.Username] = u.ID
	}

	newsItems := []*News{
		{
			ID:          s.allocID(),
			Title:       "关于开展2025年春季农田水利建设的通知",
			Content:     "全村各组需在5月30日前完成水渠清理工作。",
			Category:    NewsNotice,
			CoverImage:  "https://picsum.photos/seed/water/300/150",
			PublishedAt: ts("2025-05-20T10:00:00Z"),
			CreatedAt:   ts("2025-05-20T10:00:00Z"),
		},
		{
			ID:          s.allocID(),
			Title:       "我村特色苹果入选“省级名优产品”",
			Content:     "在省农业厅举办的评选活动中，我村红富士苹果荣获金奖。",
			Category:    NewsNews,
			CoverImage:  "https://picsum.photos/seed/apple/300/150",
			PublishedAt: ts("2025-05-18T09:00:00Z"),
			CreatedAt:   ts("2025-05-18T09:00:00Z"),
		},
		{
			ID:          s.allocID(),
			Title:       "2025年新型农村合作医疗缴费政策解读",
			Content:     "今年新农合政策有三大变化，报销比例提升至70%。",
			Category:    NewsPolicy,
			CoverImage:  "https://picsum.photos/seed/med/300/150",
			PublishedAt: ts("2025-05-15T14:30:00Z"),
			CreatedAt:   ts("2025-05-15T14:30:00Z"),
		},
	}
	for _, n := range newsItems {
		s.news[n.ID] = n
		s.newsOrder = append(s.newsOrder, n.ID)
	}

	s.createProduct(villager.ID, "高山有机红富士", decimal.NewFromInt(68), 100, "新鲜水果", "https://picsum.photos/seed/apple/200/200")
	s.createProduct(villager.ID, "农家自制腊肉", decimal.NewFromInt(45), 50, "肉禽蛋奶", "https://picsum.photos/seed/meat/200/200")

	post1 := &Post{
		ID:        s.allocID(),
		AuthorID:  admin.ID,
		BoardID:   BoardGeneral,
		Content:   "今天的村民大会讨论了修路的问题，大家都很积极。",
		LikeCount: 1,
		CreatedAt: ts("2025-05-21T08:00:00Z"),
	}
	post2 := &Post{
		ID:           s.allocID(),
		AuthorID:     villager.ID,
		BoardID:      BoardTrade,
		Content:      "【出售】自家种的南瓜，吃不完了，谁要？",
		CommentCount: 1,
		CreatedAt:    ts("2025-05-21T10:00:00Z"),
	}
	// Feed is newest first.
	s.posts[post1.ID] = post1
	s.posts[post2.ID] = post2
	s.postOrder = []int64{post2.ID, post1.ID}

	c := &Comment{
		ID:        s.allocID(),
		PostID:    post2.ID,
		AuthorID:  admin.ID,
		Content:   "我要两个！",
		CreatedAt: ts("2025-05-21T10:30:00Z"),
	}
	s.comments[c.ID] = c
	s.commentOrder[post2.ID] = []int64{c.ID}

	// The admin liked the first post; the stored counter above reflects it.
	s.likes[likeKey{UserID: admin.ID, PostID: post1.ID}] = struct{}{}

	a := &Affair{
		ID:          s.allocID(),
		ApplicantID: villager.ID,
		Title:       "2024年秋季农机补贴申请",
		Description: "购买了拖拉机一台",
		Type:        AffairGeneral,
		Status:      AffairPending,
		CreatedAt:   ts("2024-10-12T00:00:00Z"),
	}
	s.affairs[a.ID] = a
	s.affairOrder = []int64{a.ID}

	s.logger.Infow("seeded demo data",
		"users", len(s.users),
		"news", len(s.news),
		"products", len(s.products),
		"posts", len(s.posts),
		"affairs", len(s.affairs),
	)
}
