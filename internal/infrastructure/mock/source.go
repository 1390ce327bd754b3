package mock

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

// DemoPosts is the fixed timeline used by the demo command.
func DemoPosts() []domain.Post {
	texts := []string{
		"I love politics and discussing the latest political news!",
		"Had a great day at the beach with my family. So relaxing!",
		"This product is terrible, I'm very disappointed with the quality. #negative",
		"Just watching the sunset, beautiful evening!",
		"The customer service was awful, will never shop there again #complaint",
		"Starting a new project today, excited about the opportunities!",
		"Can't believe how this government is handling the situation. #politics",
		"Just had the best coffee ever at my favorite cafe!",
		"Why does everything have to be so complicated? Frustrated with this process.",
		"Celebrating my birthday today! 🎂",
	}
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]domain.Post, len(texts))
	for i, text := range texts {
		posts[i] = domain.Post{
			ID:        strconv.Itoa(i + 1),
			Text:      text,
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return posts
}

// Source is an in-memory content source. Deletes only touch its own copy of the timeline.
type Source struct {
	mu       sync.Mutex
	posts    []domain.Post
	nextID   int
	username string

	// Injectable failures, keyed by operation.
	AuthErr   error
	FetchErr  error
	CreateErr error
	// DeleteErrs fails DeletePost for specific post IDs.
	DeleteErrs map[string]error

	FetchCalls  int
	CreateCalls int
	DeleteCalls int
	Deleted     []string
}

var _ ports.ContentSource = (*Source)(nil)

// NewSource copies posts into a fresh in-memory timeline.
func NewSource(posts []domain.Post) *Source {
	copied := make([]domain.Post, len(posts))
	copy(copied, posts)
	return &Source{
		posts:    copied,
		nextID:   len(posts) + 1000,
		username: "demo",
	}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "mock"
}

// Authenticate accepts either tier unless AuthErr is set.
func (s *Source) Authenticate(ctx context.Context, tier domain.CredentialTier) (domain.Session, error) {
	if s.AuthErr != nil {
		return domain.Session{}, s.AuthErr
	}
	return domain.Session{UserID: "0", Username: s.username, Tier: tier}, nil
}

// FetchRecentPosts returns up to limit posts in timeline order.
func (s *Source) FetchRecentPosts(ctx context.Context, session domain.Session, limit int) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.FetchCalls++
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	n := min(limit, len(s.posts))
	if n <= 0 {
		return nil, nil
	}
	out := make([]domain.Post, n)
	copy(out, s.posts[:n])
	return out, nil
}

// CreatePost appends a post to the head of the timeline.
func (s *Source) CreatePost(ctx context.Context, session domain.Session, text string) (string, error) {
	if !session.CanWrite() {
		return "", domain.AuthError("create post", "user-delegated credentials are required to post")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.CreateCalls++
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	s.nextID++
	id := strconv.Itoa(s.nextID)
	s.posts = append([]domain.Post{{ID: id, Text: text, CreatedAt: time.Now()}}, s.posts...)
	return id, nil
}

// DeletePost removes the post from the in-memory timeline.
func (s *Source) DeletePost(ctx context.Context, session domain.Session, postID string) error {
	if !session.CanWrite() {
		return domain.AuthError("delete post", "user-delegated credentials are required to delete")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.DeleteCalls++
	if err := s.DeleteErrs[postID]; err != nil {
		return err
	}
	for i, p := range s.posts {
		if p.ID == postID {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			s.Deleted = append(s.Deleted, postID)
			return nil
		}
	}
	return &domain.PlatformError{Kind: domain.ErrPlatform, Op: "delete post", Status: 404, Detail: fmt.Sprintf("post %s not found", postID)}
}

// Remaining returns a copy of the current timeline.
func (s *Source) Remaining() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Post, len(s.posts))
	copy(out, s.posts)
	return out
}
