// Package e2e exercises the client SDK against the in-process stub backend,
// covering the full registration, login, refresh and admin review flows the
// way a deployment would see them.
package e2e

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danaam/danaam-go/domain"
	"github.com/danaam/danaam-go/internal/api"
	"github.com/danaam/danaam-go/internal/otp"
	"github.com/danaam/danaam-go/internal/session"
	"github.com/danaam/danaam-go/internal/store"
	"github.com/danaam/danaam-go/internal/stub"
	stubauth "github.com/danaam/danaam-go/internal/stub/auth"
	"github.com/danaam/danaam-go/internal/stub/handlers"
	"github.com/danaam/danaam-go/internal/stub/middleware"
	"github.com/danaam/danaam-go/internal/stub/otpstore"
	"github.com/danaam/danaam-go/internal/stub/storage"
	"github.com/danaam/danaam-go/internal/wizard"
)

type silentNotifier struct{}

func (silentNotifier) SendSMS(to, message string) error         { return nil }
func (silentNotifier) SendEmail(to, subject, body string) error { return nil }

type backend struct {
	srv        *httptest.Server
	userRepo   domain.UserRepository
	challenges domain.ChallengeStore
	passwords  domain.PasswordService
	tokens     domain.TokenService
	rdb        *redis.Client
}

func startBackend(t *testing.T) *backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := storage.Open("", filepath.Join(t.TempDir(), "stub.db"))
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cas, err := stubauth.NewCasbinService(gdb, filepath.Join(t.TempDir(), "absent-model.conf"))
	require.NoError(t, err)
	require.NoError(t, cas.SeedPolicies())

	passwordSvc := stubauth.NewPasswordService()
	tokenSvc := stubauth.NewJWTService("e2e-secret", "danaam-stub", time.Hour, 24*time.Hour)

	userRepo := storage.NewUserRepository(gdb)
	regRepo := storage.NewRegistrationRequestRepository(gdb)
	challenges := otpstore.NewRedisStore(rdb, 5*time.Minute, 10*time.Minute)

	otpCfg := handlers.OTPConfig{
		Length: 6, TTL: 5 * time.Minute, MaxAttempts: 5, ResendLimit: 3,
	}
	router := stub.BuildRouter(
		handlers.NewAuthHandlers(userRepo, passwordSvc, tokenSvc, challenges, silentNotifier{}, otpCfg),
		handlers.NewProfileHandlers(userRepo),
		handlers.NewUserHandlers(userRepo),
		handlers.NewRegistrationHandlers(regRepo, userRepo, passwordSvc, challenges, silentNotifier{}),
		middleware.Auth(tokenSvc),
		cas.E,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &backend{
		srv:        srv,
		userRepo:   userRepo,
		challenges: challenges,
		passwords:  passwordSvc,
		tokens:     tokenSvc,
		rdb:        rdb,
	}
}

func (b *backend) seedAdmin(t *testing.T) {
	t.Helper()
	hash, err := b.passwords.Hash("admin12345")
	require.NoError(t, err)
	require.NoError(t, b.userRepo.Create(context.Background(), &domain.StubUser{
		ID:           uuid.NewString(),
		Email:        "admin@danaam.sa",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		UserClass:    domain.ClassAdmin,
		Enabled:      true,
		CreatedAt:    time.Now(),
	}))
}

// stack builds the client-side stack a real deployment assembles in main.
func stack(t *testing.T, baseURL string) (*session.Manager, *api.Client) {
	t.Helper()
	tokens := store.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	plain := api.New(baseURL)
	manager := session.NewManager(tokens, plain)
	manager.Initialize(context.Background())
	authed := api.New(baseURL, api.WithTokenSource(manager))
	return manager, authed
}

// completeOTP answers an in-flight challenge by reading the code straight
// out of the challenge store.
func (b *backend) completeOTP(t *testing.T, ctx context.Context, challenge *otp.Challenge) string {
	t.Helper()

	// A wrong guess first, so the exchange exercises the failure path too.
	_, err := challenge.Verify(ctx, "000000")
	if err == nil {
		t.Fatal("guessed the generated code, rerun")
	}

	keys, err := b.rdb.Keys(ctx, "otp:req:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	requesterToken := strings.TrimPrefix(keys[0], "otp:req:")
	rec, err := b.challenges.Get(ctx, requesterToken)
	require.NoError(t, err)

	token, err := challenge.Verify(ctx, rec.Code)
	require.NoError(t, err)
	return token
}

func TestRegistrationThroughApprovalAndLogin(t *testing.T) {
	b := startBackend(t)
	b.seedAdmin(t)
	ctx := context.Background()

	_, client := stack(t, b.srv.URL)
	w := wizard.New(client, client)

	require.NoError(t, w.ChooseType(domain.TypeSupplier))
	w.SetCompanyInfo(wizard.CompanyInfo{
		CompanyName:             "Najd Supplies",
		Country:                 "Saudi Arabia",
		City:                    "Dammam",
		CommercialLicenseNumber: "CR-2020202020",
		CommercialLicenseFile: &domain.FileAttachment{
			Name: "license.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4"),
		},
	})
	_, err := w.Next(ctx)
	require.NoError(t, err)

	w.SetContactInfo(wizard.ContactInfo{
		FirstName: "Omar", LastName: "Najdi", JobTitle: "Owner",
		Email: "omar@najd.sa", PhoneNumber: "+966511111111",
	})
	challenge, err := w.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, challenge)

	successToken := b.completeOTP(t, ctx, challenge)
	require.NoError(t, w.CompleteOTP(successToken))

	w.SetCredentials("supplier-pass-1", "supplier-pass-1")
	_, err = w.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Submit(ctx))
	assert.Equal(t, wizard.StepSubmitted, w.Step())

	// Admin reviews and approves.
	adminMgr, adminClient := stack(t, b.srv.URL)
	_, err = adminMgr.LoginAdmin(ctx, "admin@danaam.sa", "admin12345", true)
	require.NoError(t, err)

	page, err := adminClient.ListRegistrationRequests(ctx, 1, 20, domain.RegistrationRequestFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "omar@najd.sa", page.Items[0].Email)
	assert.Equal(t, domain.StatusPending, page.Items[0].CurrentStatus)

	require.NoError(t, adminClient.ApproveRegistrationRequest(ctx, page.Items[0].ID))

	// The approved supplier logs in and sees their profile.
	userMgr, userClient := stack(t, b.srv.URL)
	sess, err := userMgr.Login(ctx, "omar@najd.sa", "supplier-pass-1", true)
	require.NoError(t, err)
	assert.Equal(t, domain.ClassSuppliers, sess.UserClass)
	assert.Equal(t, "Najd Supplies", sess.CompanyName)

	profile, err := userClient.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "omar@najd.sa", profile.Email)
	assert.Equal(t, "Dammam", profile.City)
}

func TestExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	b := startBackend(t)
	ctx := context.Background()

	hash, err := b.passwords.Hash("hunter2hunter2")
	require.NoError(t, err)
	userID := uuid.NewString()
	require.NoError(t, b.userRepo.Create(ctx, &domain.StubUser{
		ID: userID, Email: "sara@hassan.sa", PasswordHash: hash,
		Role: domain.RoleUser, UserClass: domain.ClassContractors,
		FirstName: "Sara", Enabled: true, CreatedAt: time.Now(),
	}))

	// Seed a session whose access token is garbage but whose refresh token
	// is good, as after an access-token expiry.
	refreshToken, err := b.tokens.GenerateRefreshToken(userID, domain.RoleUser, domain.ClassContractors)
	require.NoError(t, err)
	credPath := filepath.Join(t.TempDir(), "credentials.json")
	tokens := store.NewFileStore(credPath)
	require.NoError(t, tokens.Save(ctx, &domain.Session{
		UserID: userID, Role: domain.RoleUser,
		AccessToken: "expired-garbage", RefreshToken: refreshToken,
	}))

	plain := api.New(b.srv.URL)
	manager := session.NewManager(tokens, plain)
	manager.Initialize(ctx)
	client := api.New(b.srv.URL, api.WithTokenSource(manager))

	profile, err := client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sara@hassan.sa", profile.Email)

	current := manager.Current()
	require.NotNil(t, current)
	assert.NotEqual(t, "expired-garbage", current.AccessToken, "refresh must rotate the stored access token")
}

func TestRevokedRefreshTokenTearsSessionDown(t *testing.T) {
	b := startBackend(t)
	ctx := context.Background()

	tokens := store.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, tokens.Save(ctx, &domain.Session{
		UserID: uuid.NewString(), Role: domain.RoleUser,
		AccessToken: "expired-garbage", RefreshToken: "also-garbage",
	}))

	plain := api.New(b.srv.URL)
	manager := session.NewManager(tokens, plain)
	manager.Initialize(ctx)
	expired := 0
	manager.OnSessionExpired(func() { expired++ })
	client := api.New(b.srv.URL, api.WithTokenSource(manager))

	_, err := client.GetProfile(ctx)
	require.Error(t, err)
	assert.Nil(t, manager.Current(), "failed refresh logs the session out")
	assert.Equal(t, 1, expired)

	loaded, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.Complete(), "persisted credentials are cleared too")
}
