package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hugh/muse/internal/auth"
	"github.com/hugh/muse/internal/database"
	"github.com/hugh/muse/internal/database/models"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestPassword = "testpassword123"

var userSeq atomic.Int64

// SetupTestDB creates an in-memory SQLite database with the full schema and
// the seeded catalogs.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := database.SeedCatalog(context.Background(), db); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestUser creates an active user with TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := userSeq.Add(1)
	user := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: hash,
		FullName:     fmt.Sprintf("Test User %d", n),
		Role:         models.UserRoleBride,
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestCouple creates a couple with owner as its active owner member.
func CreateTestCouple(t *testing.T, db *gorm.DB, owner *models.User) *models.Couple {
	t.Helper()

	couple := &models.Couple{Name: owner.FullName + " & Partner's Wedding", LanguagePref: "en"}
	if err := db.Create(couple).Error; err != nil {
		t.Fatalf("failed to create test couple: %v", err)
	}

	AddTestMember(t, db, couple.ID, owner.ID, models.MemberStatusActive)
	if err := db.Model(&models.CoupleMember{}).
		Where("couple_id = ? AND user_id = ?", couple.ID, owner.ID).
		Update("is_owner", true).Error; err != nil {
		t.Fatalf("failed to mark owner: %v", err)
	}

	return couple
}

// AddTestMember adds userID to the couple with the given status.
func AddTestMember(t *testing.T, db *gorm.DB, coupleID, userID uint, status models.MemberStatus) *models.CoupleMember {
	t.Helper()

	member := &models.CoupleMember{
		CoupleID: coupleID,
		UserID:   userID,
		Role:     models.MemberRoleOther,
		Status:   status,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}

// EventType loads a seeded event type by key.
func EventType(t *testing.T, db *gorm.DB, key string) *models.EventType {
	t.Helper()

	var et models.EventType
	if err := db.Where("key = ?", key).First(&et).Error; err != nil {
		t.Fatalf("failed to load event type %s: %v", key, err)
	}
	return &et
}

// BudgetCategory loads a seeded budget category by key.
func BudgetCategory(t *testing.T, db *gorm.DB, key string) *models.BudgetCategory {
	t.Helper()

	var bc models.BudgetCategory
	if err := db.Where("key = ?", key).First(&bc).Error; err != nil {
		t.Fatalf("failed to load budget category %s: %v", key, err)
	}
	return &bc
}

// CreateTestEvent creates an active event of the given type for the couple.
func CreateTestEvent(t *testing.T, db *gorm.DB, coupleID uint, typeKey string) *models.Event {
	t.Helper()

	et := EventType(t, db, typeKey)
	event := &models.Event{
		CoupleID:    coupleID,
		EventTypeID: et.ID,
		Title:       et.NameEn,
		IsActive:    true,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	event.EventType = et
	return event
}

// CreateTestMedia creates a media row for the couple.
func CreateTestMedia(t *testing.T, db *gorm.DB, coupleID uint) *models.MediaFile {
	t.Helper()

	media := &models.MediaFile{
		CoupleID:   coupleID,
		StorageKey: fmt.Sprintf("couples/%d/test-%d.png", coupleID, userSeq.Add(1)),
		URL:        "http://localhost/media/test.png",
		MimeType:   "image/png",
		SizeBytes:  42,
	}
	if err := db.Create(media).Error; err != nil {
		t.Fatalf("failed to create test media: %v", err)
	}
	return media
}

// CreateTestTask creates a task for the couple.
func CreateTestTask(t *testing.T, db *gorm.DB, coupleID uint, title string) *models.Task {
	t.Helper()

	task := &models.Task{
		CoupleID: coupleID,
		Title:    title,
		Status:   models.TaskStatusTodo,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) *datatypes.Date {
	d := datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
	return &d
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 30*time.Minute, 14*24*time.Hour)
}

// GenerateTestToken returns an access token for the user.
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	pair, err := jwtService.GeneratePair(user.ID, user.Email, user.PasswordHash)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return pair.Access
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// Envelope mirrors the API response wrapper for decoding in tests.
type Envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
}

// DecodeEnvelope parses the response body, decodes data into v when v is not
// nil, and returns the error message ("" on success).
func DecodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) string {
	t.Helper()

	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
	if v != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("failed to parse data: %v. Body: %s", err, rr.Body.String())
		}
	}
	if env.Error == nil {
		return ""
	}
	return *env.Error
}

// RecordingNotifier captures partner invites instead of sending them.
type RecordingNotifier struct {
	mu      sync.Mutex
	Invites []auth.PartnerInvite
	Err     error
}

func (n *RecordingNotifier) NotifyInvite(ctx context.Context, invite auth.PartnerInvite) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Invites = append(n.Invites, invite)
	return n.Err
}

// Sent returns a copy of the recorded invites.
func (n *RecordingNotifier) Sent() []auth.PartnerInvite {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]auth.PartnerInvite(nil), n.Invites...)
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB          *gorm.DB
	JWTService  *auth.JWTService
	AuthService *auth.Service
	Notifier    *RecordingNotifier
	User        *models.User
	Couple      *models.Couple
	Token       string
}

// NewTestContext creates a complete test setup: database, a user who owns a
// couple, and an access token for that user.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	notifier := &RecordingNotifier{}
	authService := auth.NewService(db, jwtService, notifier, DiscardLogger())
	user := CreateTestUser(t, db)
	couple := CreateTestCouple(t, db, user)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:          db,
		JWTService:  jwtService,
		AuthService: authService,
		Notifier:    notifier,
		User:        user,
		Couple:      couple,
		Token:       token,
	}
}

// NewOutsider creates a second user with their own couple and returns the
// user's token. Used to check tenant isolation.
func (ts *TestSetup) NewOutsider(t *testing.T) (*models.User, *models.Couple, string) {
	t.Helper()

	user := CreateTestUser(t, ts.DB)
	couple := CreateTestCouple(t, ts.DB, user)
	return user, couple, GenerateTestToken(t, ts.JWTService, user)
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
