package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"socialnet/internal/bus"
	"socialnet/internal/model"
)

// =============================================================================
// MOCK IMPLEMENTATIONS
// =============================================================================
//
// The services depend on interfaces, so unit tests swap in mocks with
// controlled behavior. Each mock exposes fn fields for per-test behavior and
// records calls for assertions. Mocks are shared by every test file in this
// package.

type mockUserRepository struct {
	createFn  func(ctx context.Context, user *model.User) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*model.User, error)
	listFn    func(ctx context.Context) ([]model.User, error)
	searchFn  func(ctx context.Context, firstName, lastName string) ([]model.User, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = uuid.New()
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.User{}, nil
}

func (m *mockUserRepository) Search(ctx context.Context, firstName, lastName string) ([]model.User, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, firstName, lastName)
	}
	return []model.User{}, nil
}

type mockPostRepository struct {
	createFn            func(ctx context.Context, post *model.Post) error
	getByIDFn           func(ctx context.Context, id uuid.UUID) (*model.Post, error)
	getByIDFromMasterFn func(ctx context.Context, id uuid.UUID) (*model.Post, error)
	updateFn            func(ctx context.Context, post *model.Post) error
	deleteFn            func(ctx context.Context, id uuid.UUID) error
	topPostsFn          func(ctx context.Context, authorIDs []uuid.UUID, limit int) ([]model.Post, error)

	topPostsCalls atomic.Int32
	updateCalls   int
	deleteCalls   int
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = uuid.New()
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDFromMaster(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	if m.getByIDFromMasterFn != nil {
		return m.getByIDFromMasterFn(ctx, id)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Update(ctx context.Context, post *model.Post) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPostRepository) TopPostsByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit int) ([]model.Post, error) {
	m.topPostsCalls.Add(1)
	if m.topPostsFn != nil {
		return m.topPostsFn(ctx, authorIDs, limit)
	}
	return []model.Post{}, nil
}

type mockFriendStorage struct {
	createFn      func(ctx context.Context, userID, friendID uuid.UUID) error
	deleteFn      func(ctx context.Context, userID, friendID uuid.UUID) error
	existsFn      func(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
	friendsOfFn   func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	followersOfFn func(ctx context.Context, friendID uuid.UUID) ([]uuid.UUID, error)

	createCalls int
	deleteCalls int
}

func (m *mockFriendStorage) Create(ctx context.Context, userID, friendID uuid.UUID) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, userID, friendID)
	}
	return nil
}

func (m *mockFriendStorage) Delete(ctx context.Context, userID, friendID uuid.UUID) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, friendID)
	}
	return nil
}

func (m *mockFriendStorage) Exists(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, friendID)
	}
	return false, nil
}

func (m *mockFriendStorage) FriendsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if m.friendsOfFn != nil {
		return m.friendsOfFn(ctx, userID)
	}
	return []uuid.UUID{}, nil
}

func (m *mockFriendStorage) FollowersOf(ctx context.Context, friendID uuid.UUID) ([]uuid.UUID, error) {
	if m.followersOfFn != nil {
		return m.followersOfFn(ctx, friendID)
	}
	return []uuid.UUID{}, nil
}

type mockSessionStorage struct {
	createFn  func(ctx context.Context, session *model.Session) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*model.Session, error)

	createCalls []*model.Session
}

func (m *mockSessionStorage) Create(ctx context.Context, session *model.Session) error {
	m.createCalls = append(m.createCalls, session)
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionStorage) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrSessionNotFound
}

type fillCall struct {
	UserID uuid.UUID
	Posts  []model.Post
}

type mockFeedCache struct {
	existsFn func(ctx context.Context, userID uuid.UUID) (bool, error)
	pushFn   func(ctx context.Context, userID uuid.UUID, post model.Post) error
	fillFn   func(ctx context.Context, userID uuid.UUID, posts []model.Post) error
	rangeFn  func(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Post, error)
	dropFn   func(ctx context.Context, userID uuid.UUID) error
	lenFn    func(ctx context.Context, userID uuid.UUID) (int64, error)

	mu      sync.Mutex
	fills   []fillCall
	dropped []uuid.UUID
}

func (m *mockFeedCache) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID)
	}
	return false, nil
}

func (m *mockFeedCache) Push(ctx context.Context, userID uuid.UUID, post model.Post) error {
	if m.pushFn != nil {
		return m.pushFn(ctx, userID, post)
	}
	return nil
}

func (m *mockFeedCache) Fill(ctx context.Context, userID uuid.UUID, posts []model.Post) error {
	m.mu.Lock()
	m.fills = append(m.fills, fillCall{UserID: userID, Posts: posts})
	m.mu.Unlock()
	if m.fillFn != nil {
		return m.fillFn(ctx, userID, posts)
	}
	return nil
}

func (m *mockFeedCache) Range(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Post, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, userID, offset, limit)
	}
	return []model.Post{}, nil
}

func (m *mockFeedCache) Drop(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	m.dropped = append(m.dropped, userID)
	m.mu.Unlock()
	if m.dropFn != nil {
		return m.dropFn(ctx, userID)
	}
	return nil
}

func (m *mockFeedCache) Len(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.lenFn != nil {
		return m.lenFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFeedCache) fillCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fills)
}

func (m *mockFeedCache) droppedIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID{}, m.dropped...)
}

type directCall struct {
	Target uuid.UUID
	Event  bus.PostEvent
}

type mockPublisher struct {
	broadcastFn func(ctx context.Context, event bus.PostEvent) error
	directFn    func(ctx context.Context, target uuid.UUID, event bus.PostEvent) error

	mu         sync.Mutex
	broadcasts []bus.PostEvent
	directs    []directCall
}

func (m *mockPublisher) Broadcast(ctx context.Context, event bus.PostEvent) error {
	m.mu.Lock()
	m.broadcasts = append(m.broadcasts, event)
	m.mu.Unlock()
	if m.broadcastFn != nil {
		return m.broadcastFn(ctx, event)
	}
	return nil
}

func (m *mockPublisher) Direct(ctx context.Context, target uuid.UUID, event bus.PostEvent) error {
	m.mu.Lock()
	m.directs = append(m.directs, directCall{Target: target, Event: event})
	m.mu.Unlock()
	if m.directFn != nil {
		return m.directFn(ctx, target, event)
	}
	return nil
}
