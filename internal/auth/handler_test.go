package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/identity"
	identityPostgres "github.com/frahmantamala/hr-attendance/internal/identity/postgres"
	"github.com/frahmantamala/hr-attendance/internal/session"
	sessionPostgres "github.com/frahmantamala/hr-attendance/internal/session/postgres"
	"github.com/frahmantamala/hr-attendance/internal/token"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLite-compatible models for testing
type testAccount struct {
	ID           string `gorm:"column:id;primaryKey"`
	LoginName    string `gorm:"column:login_name;uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         string `gorm:"column:role;not null"`
	IsActive     bool   `gorm:"column:is_active;default:true"`
	Name         string `gorm:"column:name"`
	Email        string `gorm:"column:email"`
	Department   string `gorm:"column:department"`
	Position     string `gorm:"column:position"`
}

func (testAccount) TableName() string { return "accounts" }

type testProfile struct {
	ProfileID  string  `gorm:"column:profile_id;primaryKey"`
	Name       *string `gorm:"column:name"`
	Department *string `gorm:"column:department"`
}

func (testProfile) TableName() string { return "profiles" }

type testSession struct {
	ID               string     `gorm:"column:id;primaryKey"`
	CanonicalID      string     `gorm:"column:canonical_id;index;not null"`
	TokenFingerprint string     `gorm:"column:token_fingerprint;uniqueIndex;not null"`
	IsActive         bool       `gorm:"column:is_active;default:true"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;not null"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
	UserAgent        string     `gorm:"column:user_agent"`
	Origin           string     `gorm:"column:origin"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
}

func (testSession) TableName() string { return "sessions" }

var _ = Describe("Auth Handler Integration", func() {
	var (
		db       *gorm.DB
		registry *session.Registry
		service  *auth.Service
		handler  *auth.Handler
		slogger  *slog.Logger
	)

	loginBody := func(loginName, password string) *bytes.Buffer {
		body, err := json.Marshal(auth.LoginDTO{LoginName: loginName, Password: password})
		Expect(err).NotTo(HaveOccurred())
		return bytes.NewBuffer(body)
	}

	doLogin := func(loginName, password string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", loginBody(loginName, password))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.Login(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&testAccount{}, &testProfile{}, &testSession{})
		Expect(err).NotTo(HaveOccurred())

		normalizer := identity.NewNormalizer(identity.DefaultSeparators, identity.DefaultPrefixes)
		repo := identityPostgres.NewRepository(db, normalizer, 5*time.Second)
		resolver := identity.NewResolver(repo, normalizer, slogger)
		issuer := token.NewIssuer("test-session-secret-at-least-32-chars", 15*time.Minute, 720*time.Hour, 720*time.Hour)
		registry = session.NewRegistry(sessionPostgres.NewRepository(db, 5*time.Second), slogger)
		service = auth.NewService(resolver, repo, issuer, registry, slogger)
		handler = auth.NewHandler(service)

		hash, err := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		err = db.Create(&testAccount{
			ID:           "emp_001",
			LoginName:    "siti",
			PasswordHash: string(hash),
			Role:         identity.RoleEmployee,
			IsActive:     true,
			Name:         "Siti (account)",
			Department:   "People Operations",
		}).Error
		Expect(err).NotTo(HaveOccurred())

		name := "Siti Rahayu"
		department := "Finance"
		err = db.Create(&testProfile{
			ProfileID:  "EMP001",
			Name:       &name,
			Department: &department,
		}).Error
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("POST /auth/login", func() {
		It("should authenticate and return the merged identity", func() {
			w := doLogin("siti", "correct_password")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

			var result auth.LoginResult
			Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
			Expect(result.Token).NotTo(BeEmpty())
			Expect(result.Identity.CanonicalID).To(Equal("emp_001"))
			// Drifted profile key EMP001 reconciled against account emp_001.
			Expect(result.Identity.DisplayName).To(Equal("Siti Rahayu"))
			Expect(result.Identity.Department).To(Equal("Finance"))
		})

		It("should use the same response for wrong password and unknown login", func() {
			wrongPassword := doLogin("siti", "wrong_password")
			unknownLogin := doLogin("nobody", "correct_password")

			Expect(wrongPassword.Code).To(Equal(http.StatusUnauthorized))
			Expect(unknownLogin.Code).To(Equal(http.StatusUnauthorized))
			Expect(wrongPassword.Body.String()).To(Equal(unknownLogin.Body.String()))
		})

		It("should reject an inactive account without revealing why", func() {
			Expect(db.Model(&testAccount{}).Where("id = ?", "emp_001").Update("is_active", false).Error).To(Succeed())

			w := doLogin("siti", "correct_password")

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("invalid login name or password"))
		})

		It("should surface ambiguous identity data as a server error", func() {
			name := "Siti R."
			Expect(db.Create(&testProfile{ProfileID: "emp-001", Name: &name}).Error).To(Succeed())

			w := doLogin("siti", "correct_password")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(ContainSubstring("identity data requires attention"))
		})

		It("should reject a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{not json"))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("AuthMiddleware", func() {
		var protected http.Handler

		BeforeEach(func() {
			protected = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ident, ok := auth.IdentityFromContext(r.Context())
				Expect(ok).To(BeTrue())
				handler.WriteJSON(w, http.StatusOK, ident)
			}))
		})

		It("should admit a live session and expose the identity", func() {
			login := doLogin("siti", "correct_password")
			var result auth.LoginResult
			Expect(json.NewDecoder(login.Body).Decode(&result)).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/me", nil)
			req.Header.Set("Authorization", "Bearer "+result.Token)
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var ident identity.EmployeeIdentity
			Expect(json.NewDecoder(w.Body).Decode(&ident)).To(Succeed())
			Expect(ident.CanonicalID).To(Equal("emp_001"))
		})

		It("should reject a request without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/me", nil)
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject a logged-out token even though it still verifies", func() {
			login := doLogin("siti", "correct_password")
			var result auth.LoginResult
			Expect(json.NewDecoder(login.Body).Decode(&result)).To(Succeed())

			logoutReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
			logoutReq.Header.Set("Authorization", "Bearer "+result.Token)
			logoutW := httptest.NewRecorder()
			handler.Logout(logoutW, logoutReq)
			Expect(logoutW.Code).To(Equal(http.StatusNoContent))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/me", nil)
			req.Header.Set("Authorization", "Bearer "+result.Token)
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("session expired"))
		})

		It("should reject garbage tokens", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/me", nil)
			req.Header.Set("Authorization", "Bearer not.a.token")
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject a token for a deactivated employee after revocation cascade", func() {
			login := doLogin("siti", "correct_password")
			var result auth.LoginResult
			Expect(json.NewDecoder(login.Body).Decode(&result)).To(Succeed())

			Expect(service.RevokeAllForIdentity(context.Background(), "emp_001")).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/me", nil)
			req.Header.Set("Authorization", "Bearer "+result.Token)
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("POST /auth/logout", func() {
		It("should return no content even without a token", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
			w := httptest.NewRecorder()

			handler.Logout(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
		})

		It("should be idempotent", func() {
			login := doLogin("siti", "correct_password")
			var result auth.LoginResult
			Expect(json.NewDecoder(login.Body).Decode(&result)).To(Succeed())

			for i := 0; i < 2; i++ {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
				req.Header.Set("Authorization", "Bearer "+result.Token)
				w := httptest.NewRecorder()
				handler.Logout(w, req)
				Expect(w.Code).To(Equal(http.StatusNoContent))
			}
		})
	})
})
