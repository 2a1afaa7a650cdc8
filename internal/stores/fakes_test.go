package stores

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
)

// fakePlatform is an in-memory stand-in for the hosted backend, shared by
// every store test. Rows get ids and strictly increasing created_at
// timestamps on insert, like the platform's defaults would.
type fakePlatform struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
	posts    []*models.Post
	likes    []*models.Like
	follows  []*models.Follow
	comments []*models.Comment
	messages []*models.Message

	clock time.Time
	calls map[string]int

	failWith   error
	unreadHook func()
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		profiles: make(map[uuid.UUID]*models.Profile),
		clock:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		calls:    make(map[string]int),
	}
}

func (f *fakePlatform) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakePlatform) called(name string) error {
	f.calls[name]++
	return f.failWith
}

func (f *fakePlatform) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakePlatform) addProfile(username string, interests ...string) *models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := &models.Profile{
		ID:        uuid.New(),
		Username:  username,
		Interests: interests,
		CreatedAt: f.tick(),
	}
	f.profiles[profile.ID] = profile
	return profile
}

// ProfileBackend

func (f *fakePlatform) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("profiles.get"); err != nil {
		return nil, err
	}
	return f.profiles[id], nil
}

func (f *fakePlatform) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("profiles.batch"); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.Profile)
	for _, id := range ids {
		if profile, ok := f.profiles[id]; ok {
			out[id] = profile
		}
	}
	return out, nil
}

func (f *fakePlatform) Update(ctx context.Context, id uuid.UUID, patch map[string]interface{}) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("profiles.update"); err != nil {
		return nil, err
	}
	profile, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	if v, ok := patch["display_name"].(string); ok {
		profile.DisplayName = v
	}
	if v, ok := patch["bio"].(string); ok {
		profile.Bio = v
	}
	if v, ok := patch["avatar_url"].(string); ok {
		profile.AvatarURL = v
	}
	if v, ok := patch["location"].(string); ok {
		profile.Location = v
	}
	if v, ok := patch["mood"].(string); ok {
		profile.Mood = v
	}
	if v, ok := patch["interests"].(models.StringList); ok {
		profile.Interests = v
	}
	profile.UpdatedAt = f.tick()
	return profile, nil
}

func (f *fakePlatform) ListByFollowerCount(ctx context.Context, exclude uuid.UUID, limit int) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("profiles.explore"); err != nil {
		return nil, err
	}
	var out []*models.Profile
	for _, profile := range f.profiles {
		if profile.ID != exclude {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FollowersCount > out[j].FollowersCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePlatform) SearchByName(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("profiles.search"); err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var out []*models.Profile
	for _, profile := range f.profiles {
		if strings.Contains(strings.ToLower(profile.Username), needle) ||
			strings.Contains(strings.ToLower(profile.DisplayName), needle) {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FollowersCount > out[j].FollowersCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PostBackend

func (f *fakePlatform) List(ctx context.Context) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("posts.list"); err != nil {
		return nil, err
	}
	out := make([]*models.Post, len(f.posts))
	copy(out, f.posts)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakePlatform) Create(ctx context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("posts.create"); err != nil {
		return err
	}
	post.ID = uuid.New()
	post.CreatedAt = f.tick()
	stored := *post
	f.posts = append(f.posts, &stored)
	return nil
}

func (f *fakePlatform) getPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("posts.get"); err != nil {
		return nil, err
	}
	for _, post := range f.posts {
		if post.ID == id {
			copied := *post
			return &copied, nil
		}
	}
	return nil, nil
}

// PostCounters / ProfileCounters — drift is allowed, so the fake just
// counts the calls.

func (f *fakePlatform) UpdateLikesCount(ctx context.Context, postID uuid.UUID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called("posts.likes_count")
}

func (f *fakePlatform) UpdateCommentsCount(ctx context.Context, postID uuid.UUID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called("posts.comments_count")
}

func (f *fakePlatform) UpdateFollowersCount(ctx context.Context, id uuid.UUID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called("profiles.followers_count")
}

func (f *fakePlatform) UpdateFollowingCount(ctx context.Context, id uuid.UUID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called("profiles.following_count")
}

func (f *fakePlatform) UpdatePostsCount(ctx context.Context, id uuid.UUID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called("profiles.posts_count")
}

// LikeBackend

func (f *fakePlatform) listLikes(ctx context.Context) ([]*models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("likes.list"); err != nil {
		return nil, err
	}
	out := make([]*models.Like, len(f.likes))
	copy(out, f.likes)
	return out, nil
}

func (f *fakePlatform) createLike(ctx context.Context, like *models.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("likes.create"); err != nil {
		return err
	}
	like.ID = uuid.New()
	like.CreatedAt = f.tick()
	stored := *like
	f.likes = append(f.likes, &stored)
	return nil
}

func (f *fakePlatform) DeleteByID(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("likes.delete"); err != nil {
		return err
	}
	kept := f.likes[:0]
	for _, like := range f.likes {
		if like.ID != id {
			kept = append(kept, like)
		}
	}
	f.likes = kept
	return nil
}

// FollowBackend

func (f *fakePlatform) ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("follows.followers"); err != nil {
		return nil, err
	}
	var out []*models.Follow
	for _, edge := range f.follows {
		if edge.FollowingID == userID {
			copied := *edge
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakePlatform) ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("follows.following"); err != nil {
		return nil, err
	}
	var out []*models.Follow
	for _, edge := range f.follows {
		if edge.FollowerID == userID {
			copied := *edge
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakePlatform) createFollow(ctx context.Context, follow *models.Follow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("follows.create"); err != nil {
		return err
	}
	follow.ID = uuid.New()
	follow.CreatedAt = f.tick()
	stored := *follow
	f.follows = append(f.follows, &stored)
	return nil
}

func (f *fakePlatform) Delete(ctx context.Context, followerID, followingID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("follows.delete"); err != nil {
		return err
	}
	kept := f.follows[:0]
	for _, edge := range f.follows {
		if edge.FollowerID != followerID || edge.FollowingID != followingID {
			kept = append(kept, edge)
		}
	}
	f.follows = kept
	return nil
}

// CommentBackend

func (f *fakePlatform) ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("comments.list"); err != nil {
		return nil, err
	}
	var out []*models.Comment
	for _, comment := range f.comments {
		if comment.PostID == postID {
			copied := *comment
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakePlatform) createComment(ctx context.Context, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("comments.create"); err != nil {
		return err
	}
	comment.ID = uuid.New()
	comment.CreatedAt = f.tick()
	stored := *comment
	f.comments = append(f.comments, &stored)
	return nil
}

// MessageBackend

func (f *fakePlatform) Thread(ctx context.Context, userA, userB uuid.UUID) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("messages.thread"); err != nil {
		return nil, err
	}
	var out []*models.Message
	for _, message := range f.messages {
		match := (message.SenderID == userA && message.ReceiverID == userB) ||
			(message.SenderID == userB && message.ReceiverID == userA)
		if match {
			copied := *message
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakePlatform) createMessage(ctx context.Context, message *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("messages.create"); err != nil {
		return err
	}
	message.ID = uuid.New()
	message.CreatedAt = f.tick()
	stored := *message
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakePlatform) ListUnread(ctx context.Context, receiverID uuid.UUID) ([]*models.Message, error) {
	f.mu.Lock()
	if err := f.called("messages.unread"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	var out []*models.Message
	for _, message := range f.messages {
		if message.ReceiverID == receiverID && message.ReadAt == nil {
			copied := *message
			out = append(out, &copied)
		}
	}
	f.mu.Unlock()

	// lets a test hold a fetched result before it is returned
	if hook := f.unreadHook; hook != nil {
		hook()
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakePlatform) MarkThreadRead(ctx context.Context, senderID, receiverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.called("messages.mark_read"); err != nil {
		return err
	}
	now := f.tick()
	for _, message := range f.messages {
		if message.SenderID == senderID && message.ReceiverID == receiverID && message.ReadAt == nil {
			readAt := now
			message.ReadAt = &readAt
		}
	}
	return nil
}

// likeAdapter and friends expose the fake under the per-store interface
// method names that clash on the shared struct.
type postAdapter struct{ *fakePlatform }

func (a postAdapter) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return a.getPostByID(ctx, id)
}

type likeAdapter struct{ *fakePlatform }

func (a likeAdapter) List(ctx context.Context) ([]*models.Like, error) { return a.listLikes(ctx) }
func (a likeAdapter) Create(ctx context.Context, like *models.Like) error {
	return a.createLike(ctx, like)
}

type followAdapter struct{ *fakePlatform }

func (a followAdapter) Create(ctx context.Context, follow *models.Follow) error {
	return a.createFollow(ctx, follow)
}

type commentAdapter struct{ *fakePlatform }

func (a commentAdapter) Create(ctx context.Context, comment *models.Comment) error {
	return a.createComment(ctx, comment)
}

type messageAdapter struct{ *fakePlatform }

func (a messageAdapter) Create(ctx context.Context, message *models.Message) error {
	return a.createMessage(ctx, message)
}

// fakePublisher records change-feed events.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	key   string
	value interface{}
}

func (p *fakePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{key: key, value: value})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// fakeBucket pretends to be the avatars bucket.
type fakeBucket struct {
	lastUserID string
	lastType   string
}

func (b *fakeBucket) UploadAvatar(userID, contentType string, data []byte) (string, error) {
	b.lastUserID = userID
	b.lastType = contentType
	return "https://cdn.test/avatars/" + userID + "/avatar.png", nil
}
