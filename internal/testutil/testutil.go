package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/auth"
	"github.com/hugh/go-roster/internal/database"
	"github.com/hugh/go-roster/internal/database/models"
	"github.com/hugh/go-roster/internal/employees"
	"github.com/hugh/go-roster/internal/session"
	"github.com/hugh/go-roster/internal/validation"
	"github.com/hugh/go-roster/pkg/phone"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestPassword      = "testpassword123"
	TestSessionSecret = "test-secret-key-for-testing"
	TestSessionTTL    = time.Hour
	SessionCookieName = "session"
)

// SetupTestDB opens a migrated in-memory SQLite database. The pool is pinned
// to one connection so every query sees the same in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// DiscardLogger drops everything; tests assert on behaviour, not log lines.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func CreateTestOrg(t *testing.T, db *gorm.DB, name string) *models.Organization {
	t.Helper()

	if name == "" {
		name = "Test Organization " + uuid.New().String()[:8]
	}
	org := &models.Organization{Name: name}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateTestUser creates a user in org whose password is TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, org *models.Organization) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		FirstName:      "Test",
		LastName:       "User",
		Email:          "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash:   hash,
		OrganizationID: org.ID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user.Organization = org
	return user
}

var phoneSeq atomic.Int64

// NextPhone returns a distinct valid US number for each call.
func NextPhone() string {
	return fmt.Sprintf("+1650253%04d", phoneSeq.Add(1)%10000)
}

// CreateTestEmployee inserts an employee directly, bypassing the service.
func CreateTestEmployee(t *testing.T, db *gorm.DB, orgID uuid.UUID, name string) *models.Employee {
	t.Helper()

	emp := &models.Employee{
		Name:           name,
		Email:          strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "-" + uuid.New().String()[:6] + "@example.com",
		Phone:          NextPhone(),
		Address:        "1 Test Street",
		JoiningDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Designation:    "Engineer",
		OrganizationID: orgID,
	}
	if err := db.Create(emp).Error; err != nil {
		t.Fatalf("failed to create test employee: %v", err)
	}

	return emp
}

func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService(TestSessionSecret)
}

func NewAuthService(db *gorm.DB, store session.Store) *auth.Service {
	return auth.NewService(db, CreateTestJWTService(), store, validation.New(), DiscardLogger(), TestSessionTTL)
}

func NewEmployeeService(db *gorm.DB, sealer employees.Sealer) *employees.Service {
	return employees.NewService(db, sealer, phone.NewNormalizer("US"), validation.New(), DiscardLogger())
}

// Identity builds the identity the auth middleware would resolve for user.
func Identity(user *models.User) *auth.Identity {
	return &auth.Identity{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
	}
}

// Login opens a session for user and returns the cookie a browser would send.
func Login(t *testing.T, svc *auth.Service, user *models.User) *http.Cookie {
	t.Helper()

	res, err := svc.Login(context.Background(), auth.LoginInput{Email: user.Email, Password: TestPassword})
	if err != nil {
		t.Fatalf("failed to log in test user: %v", err)
	}
	return &http.Cookie{Name: SessionCookieName, Value: res.Token}
}

// FormRequest builds a urlencoded request carrying the given cookies.
func FormRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "text/html")
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	return req
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ResponseCookie returns the named cookie set on the response, if any.
func ResponseCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds a migrated database, the services wired over it and one
// logged-in user.
type TestSetup struct {
	DB        *gorm.DB
	Sessions  session.Store
	Auth      *auth.Service
	Employees *employees.Service
	Org       *models.Organization
	User      *models.User
	Cookie    *http.Cookie
	t         *testing.T
}

func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	store := session.NewDatabaseStore(db)
	authSvc := NewAuthService(db, store)
	org := CreateTestOrg(t, db, "")
	user := CreateTestUser(t, db, org)

	return &TestSetup{
		DB:        db,
		Sessions:  store,
		Auth:      authSvc,
		Employees: NewEmployeeService(db, nil),
		Org:       org,
		User:      user,
		Cookie:    Login(t, authSvc, user),
		t:         t,
	}
}

// SecondTenant creates another organization with its own logged-in user.
func (ts *TestSetup) SecondTenant(name string) (*models.Organization, *models.User, *http.Cookie) {
	ts.t.Helper()
	org := CreateTestOrg(ts.t, ts.DB, name)
	user := CreateTestUser(ts.t, ts.DB, org)
	return org, user, Login(ts.t, ts.Auth, user)
}

func (ts *TestSetup) Cleanup() {
	CleanupTestDB(ts.t, ts.DB)
}
