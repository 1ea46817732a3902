// Command seeder fills a running village backend with generated demo data.
// It drives the public HTTP API, so everything it creates goes through the
// same validation as real traffic.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/villagelink/village-backend/internal/log"
)

type client struct {
	base string
	http *http.Client
}

func (c *client) post(path string, body interface{}, dest interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}
	if dest != nil {
		return json.NewDecoder(resp.Body).Decode(dest)
	}
	return nil
}

func main() {
	var (
		addr    = flag.String("addr", "http://localhost:8080", "base URL of the running backend")
		users   = flag.Int("users", 10, "number of demo users to register")
		posts   = flag.Int("posts", 25, "number of demo posts to create")
		news    = flag.Int("news", 5, "number of demo news items to publish")
		affairs = flag.Int("affairs", 8, "number of demo affairs to file")
		seed    = flag.Int64("seed", 0, "deterministic seed (0 picks one)")
	)
	flag.Parse()

	logger, err := log.NewSugar("dev")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	c := &client{base: *addr, http: &http.Client{Timeout: 10 * time.Second}}

	var userIDs []int64
	for i := 0; i < *users; i++ {
		var created struct {
			ID int64 `json:"id"`
		}
		err := c.post("/v1/auth/register", map[string]string{
			"username": gofakeit.Username(),
			"password": gofakeit.Password(true, true, true, false, false, 12),
			"phone":    gofakeit.Phone(),
		}, &created)
		if err != nil {
			logger.Warnw("register failed", "error", err)
			continue
		}
		userIDs = append(userIDs, created.ID)
	}
	logger.Infow("registered users", "count", len(userIDs))
	if len(userIDs) == 0 {
		logger.Fatalw("no users registered; is the backend running?", "addr", *addr)
	}

	pick := func() int64 { return userIDs[gofakeit.IntRange(0, len(userIDs)-1)] }

	var postIDs []int64
	for i := 0; i < *posts; i++ {
		boardID := int64(1)
		if gofakeit.Bool() {
			boardID = 2
		}
		var created struct {
			ID int64 `json:"id"`
		}
		err := c.post("/v1/posts", map[string]interface{}{
			"author_id": pick(),
			"board_id":  boardID,
			"content":   gofakeit.Sentence(12),
		}, &created)
		if err != nil {
			logger.Warnw("create post failed", "error", err)
			continue
		}
		postIDs = append(postIDs, created.ID)

		for j := 0; j < gofakeit.IntRange(0, 4); j++ {
			path := fmt.Sprintf("/v1/posts/%d/comments", created.ID)
			if err := c.post(path, map[string]interface{}{
				"author_id": pick(),
				"content":   gofakeit.Sentence(8),
			}, nil); err != nil {
				logger.Warnw("create comment failed", "error", err)
			}
		}
		for j := 0; j < gofakeit.IntRange(0, 3); j++ {
			path := fmt.Sprintf("/v1/posts/%d/like", created.ID)
			if err := c.post(path, map[string]int64{"user_id": pick()}, nil); err != nil {
				logger.Warnw("like failed", "error", err)
			}
		}
	}
	logger.Infow("created posts", "count", len(postIDs))

	categories := []string{"NOTICE", "NEWS", "POLICY"}
	for i := 0; i < *news; i++ {
		err := c.post("/v1/news", map[string]string{
			"title":       gofakeit.Sentence(6),
			"content":     gofakeit.Paragraph(1, 3, 10, " "),
			"category":    categories[gofakeit.IntRange(0, len(categories)-1)],
			"cover_image": gofakeit.ImageURL(300, 150),
		}, nil)
		if err != nil {
			logger.Warnw("create news failed", "error", err)
		}
	}

	for i := 0; i < *affairs; i++ {
		body := map[string]interface{}{
			"applicant_id": pick(),
			"title":        gofakeit.Sentence(5),
			"description":  gofakeit.Sentence(10),
			"type":         "GENERAL",
		}
		if gofakeit.Bool() {
			draft, _ := json.Marshal(map[string]interface{}{
				"name":     gofakeit.Fruit(),
				"price":    fmt.Sprintf("%.2f", gofakeit.Price(5, 200)),
				"stock":    fmt.Sprintf("%d", gofakeit.IntRange(1, 100)),
				"category": gofakeit.ProductCategory(),
				"image":    gofakeit.ImageURL(200, 200),
			})
			body["type"] = "PRODUCT_LISTING"
			body["description"] = string(draft)
		}
		if err := c.post("/v1/affairs", body, nil); err != nil {
			logger.Warnw("create affair failed", "error", err)
		}
	}

	logger.Infow("seeding complete", "addr", *addr)
}
