package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret",
			AccessTokenTTLHours: 1,
			BcryptCost:          4,
		},
	}
}

// memUserRepo is an in-memory repository.UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) clone(u *domain.User) *domain.User {
	copied := *u
	return &copied
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	user.Username = strings.ToLower(user.Username)
	for _, existing := range m.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}

	m.seq++
	user.ID = fmt.Sprintf("id-%d", m.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = m.clone(user)
	return nil
}

func (m *memUserRepo) Update(_ context.Context, id string, changes domain.UserChanges) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.Forename != nil {
		user.Forename = *changes.Forename
	}
	if changes.Email != nil {
		user.Email = strings.ToLower(*changes.Email)
	}
	if changes.Username != nil {
		user.Username = strings.ToLower(*changes.Username)
	}
	if changes.Avatar != nil {
		user.Avatar = *changes.Avatar
	}
	if changes.Role != nil {
		user.Role = *changes.Role
	}
	if changes.PasswordHash != nil {
		user.PasswordHash = *changes.PasswordHash
	}
	user.UpdatedAt = time.Now()
	return m.clone(user), nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		return m.clone(user), nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == strings.ToLower(email) {
			return m.clone(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == strings.ToLower(username) {
			return m.clone(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByIdentity(ctx context.Context, email, username string) (*domain.User, error) {
	if email != "" {
		if user, err := m.GetByEmail(ctx, email); err == nil {
			return user, nil
		}
	}
	if username != "" {
		if user, err := m.GetByUsername(ctx, username); err == nil {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) Delete(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(m.users, id)
	return user, nil
}

func (m *memUserRepo) List(_ context.Context, page, size int) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		all = append(all, m.clone(user))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (m *memUserRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *memUserRepo) CountByAuthType(_ context.Context) (map[domain.AuthType]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := make(map[domain.AuthType]int)
	for _, user := range m.users {
		stats[user.AuthType]++
	}
	return stats, nil
}

// memLogRepo is an in-memory repository.LogRepository.
type memLogRepo struct {
	mu      sync.Mutex
	seq     int
	entries []*domain.LogEntry
}

func newMemLogRepo() *memLogRepo {
	return &memLogRepo{}
}

func (m *memLogRepo) Create(_ context.Context, entry *domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	entry.ID = fmt.Sprintf("log-%d", m.seq)
	entry.CreatedAt = time.Now()
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *memLogRepo) List(_ context.Context, page, size int) ([]*domain.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.LogEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memLogRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *memLogRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, entry := range m.entries {
		if entry.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memLogRepo) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// memSettingRepo is an in-memory repository.SettingRepository.
type memSettingRepo struct {
	mu       sync.Mutex
	settings map[string]*domain.Setting
	reads    int
}

func newMemSettingRepo() *memSettingRepo {
	return &memSettingRepo{settings: make(map[string]*domain.Setting)}
}

func (m *memSettingRepo) GetByKeys(_ context.Context, keys []string) ([]*domain.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	out := make([]*domain.Setting, 0, len(keys))
	for _, key := range keys {
		if setting, ok := m.settings[key]; ok {
			copied := *setting
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memSettingRepo) Upsert(_ context.Context, key, value string) (*domain.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	setting, ok := m.settings[key]
	if !ok {
		setting = &domain.Setting{ID: key, Key: key, CreatedAt: time.Now()}
		m.settings[key] = setting
	}
	setting.Value = value
	setting.UpdatedAt = time.Now()
	copied := *setting
	return &copied, nil
}

// memSettingCache is an in-memory SettingCache.
type memSettingCache struct {
	mu     sync.Mutex
	values map[string]string
	hits   int
}

func newMemSettingCache() *memSettingCache {
	return &memSettingCache{values: make(map[string]string)}
}

func (m *memSettingCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if ok {
		m.hits++
	}
	return value, ok
}

func (m *memSettingCache) Set(_ context.Context, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}
