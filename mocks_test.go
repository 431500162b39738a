package credentials_test

import (
	"context"
	"database/sql"
	"path"
	"sync"
	"time"

	credentials "github.com/goliatone/go-credentials"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// memoryStore is an in-memory CredentialStore with real TTL semantics so
// tests can exercise expiry without a Redis instance.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]memoryEntry{}}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", credentials.ErrKeyNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", credentials.ErrKeyNotFound
	}
	return entry.value, nil
}

func (s *memoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *memoryStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key := range s.entries {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *memoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// failingStore wraps a memoryStore and fails selected operations.
type failingStore struct {
	*memoryStore
	getErr    error
	setErr    error
	deleteErr error
	scanErr   error
}

func (s *failingStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.memoryStore.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.memoryStore.Set(ctx, key, value, ttl)
}

func (s *failingStore) Delete(ctx context.Context, keys ...string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.memoryStore.Delete(ctx, keys...)
}

func (s *failingStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return s.memoryStore.Scan(ctx, pattern)
}

// testConfig implements credentials.Config
type testConfig struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newTestConfig() testConfig {
	return testConfig{
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
	}
}

func (c testConfig) GetSigningKey() string { return "test-signing-key" }
func (c testConfig) GetIssuer() string     { return "test-issuer" }
func (c testConfig) GetAudience() []string { return []string{"test-audience"} }
func (c testConfig) GetAccessTokenExpiration() time.Duration {
	return c.accessTTL
}
func (c testConfig) GetRefreshTokenExpiration() time.Duration {
	return c.refreshTTL
}

// stubIdentity implements credentials.Identity
type stubIdentity struct {
	id         string
	email      string
	name       string
	isActive   bool
	isVerified bool
	roles      []string
}

func activeIdentity(id string) stubIdentity {
	return stubIdentity{
		id:         id,
		email:      "pepe.rone@example.com",
		name:       "Pepe Rone",
		isActive:   true,
		isVerified: true,
		roles:      []string{"user"},
	}
}

func (s stubIdentity) ID() string       { return s.id }
func (s stubIdentity) Email() string    { return s.email }
func (s stubIdentity) Name() string     { return s.name }
func (s stubIdentity) IsActive() bool   { return s.isActive }
func (s stubIdentity) IsVerified() bool { return s.isVerified }
func (s stubIdentity) Roles() []string  { return s.roles }

// stubProvider implements credentials.IdentityProvider with function fields.
type stubProvider struct {
	verify      func(ctx context.Context, email, password string) (credentials.Identity, error)
	findByID    func(ctx context.Context, id string) (credentials.Identity, error)
	findByEmail func(ctx context.Context, email string) (credentials.Identity, error)
}

func (s stubProvider) VerifyIdentity(ctx context.Context, email, password string) (credentials.Identity, error) {
	return s.verify(ctx, email, password)
}

func (s stubProvider) FindIdentityByID(ctx context.Context, id string) (credentials.Identity, error) {
	return s.findByID(ctx, id)
}

func (s stubProvider) FindIdentityByEmail(ctx context.Context, email string) (credentials.Identity, error) {
	return s.findByEmail(ctx, email)
}

// capturingSink records every activity event it sees.
type capturingSink struct {
	mu     sync.Mutex
	events []credentials.ActivityEvent
	err    error
}

func (s *capturingSink) Record(ctx context.Context, event credentials.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *capturingSink) byType(eventType credentials.ActivityEventType) []credentials.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []credentials.ActivityEvent
	for _, event := range s.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

// captureNotifier records deliveries instead of sending email.
type captureNotifier struct {
	resetEmail  string
	resetToken  string
	verifyEmail string
	verifyOTP   string
	err         error
}

func (n *captureNotifier) SendPasswordReset(email, token string) error {
	n.resetEmail = email
	n.resetToken = token
	return n.err
}

func (n *captureNotifier) SendVerificationCode(email, otp string) error {
	n.verifyEmail = email
	n.verifyOTP = otp
	return n.err
}

// fakeUsers overrides just the repository methods the code under test calls;
// anything else panics through the embedded nil interface.
type fakeUsers struct {
	credentials.Users

	getByID      func(ctx context.Context, id string) (*credentials.User, error)
	getByEmail   func(ctx context.Context, email string) (*credentials.User, error)
	register     func(ctx context.Context, user *credentials.User) (*credentials.User, error)
	resetPass    func(ctx context.Context, id uuid.UUID, hash string) error
	markVerified func(ctx context.Context, id uuid.UUID) (*credentials.User, error)
	trackLogin   func(ctx context.Context, user *credentials.User) error
}

func (f *fakeUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*credentials.User, error) {
	return f.getByID(ctx, id)
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*credentials.User, error) {
	return f.getByEmail(ctx, email)
}

func (f *fakeUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*credentials.User, error) {
	return f.getByEmail(ctx, email)
}

func (f *fakeUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *credentials.User) (*credentials.User, error) {
	return f.register(ctx, user)
}

func (f *fakeUsers) ResetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return f.resetPass(ctx, id, hash)
}

func (f *fakeUsers) MarkVerified(ctx context.Context, id uuid.UUID) (*credentials.User, error) {
	return f.markVerified(ctx, id)
}

func (f *fakeUsers) TrackSuccessfulLogin(ctx context.Context, user *credentials.User) error {
	if f.trackLogin != nil {
		return f.trackLogin(ctx, user)
	}
	return nil
}

// fakeRepoManager runs transactions against a zero bun.Tx; the fakes never
// touch the database handle.
type fakeRepoManager struct {
	users credentials.Users
}

func (f *fakeRepoManager) Validate() error { return nil }
func (f *fakeRepoManager) MustValidate()   {}

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

func (f *fakeRepoManager) Users() credentials.Users { return f.users }

// MockContext mocks router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}
