package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytza/ytza/internal/billing"
	"github.com/ytza/ytza/internal/clock"
	"github.com/ytza/ytza/internal/config"
	"github.com/ytza/ytza/internal/content"
	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
	creditsrepo "github.com/ytza/ytza/internal/credits/repository"
	creditsservice "github.com/ytza/ytza/internal/credits/service"
	"github.com/ytza/ytza/internal/generation"
	newsletterdomain "github.com/ytza/ytza/internal/newsletter/domain"
	newsletterrepo "github.com/ytza/ytza/internal/newsletter/repository"
	newsletterservice "github.com/ytza/ytza/internal/newsletter/service"
	projectdomain "github.com/ytza/ytza/internal/project/domain"
	projectrepo "github.com/ytza/ytza/internal/project/repository"
	projectservice "github.com/ytza/ytza/internal/project/service"
	"github.com/ytza/ytza/internal/prompt"
	"github.com/ytza/ytza/internal/providers/beehiiv"
	"github.com/ytza/ytza/internal/providers/openaiimg"
	"github.com/ytza/ytza/internal/providers/stripe"
	purchasedomain "github.com/ytza/ytza/internal/purchase/domain"
	purchaserepo "github.com/ytza/ytza/internal/purchase/repository"
	purchaseservice "github.com/ytza/ytza/internal/purchase/service"
	"github.com/ytza/ytza/internal/ratelimit"
	"github.com/ytza/ytza/internal/thumbnail"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeImages struct {
	b64   string
	err   error
	calls int
}

func (f *fakeImages) GenerateImage(context.Context, string) (string, error) {
	f.calls++
	return f.b64, f.err
}

type fakeLLM struct {
	enabled bool
	output  string
	err     error
}

func (f *fakeLLM) Enabled() bool { return f.enabled }

func (f *fakeLLM) GenerateText(context.Context, string) (string, error) {
	return f.output, f.err
}

type harness struct {
	engine  *gin.Engine
	credits creditsdomain.Service
	images  *fakeImages
	llm     *fakeLLM
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&creditsdomain.UserCredits{},
		&projectdomain.Project{},
		&purchasedomain.Purchase{},
		&newsletterdomain.Subscriber{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		Environment:         "test",
		AppVersion:          "test",
		Port:                "0",
		AuthJWTSecret:       testJWTSecret,
		StripeSecretKey:     "sk_test",
		StripeWebhookSecret: "whsec_test",
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
	}
	plans := config.NewStaticPlansHolder(config.DefaultPlansConfig())
	log := zap.NewNop()

	images := &fakeImages{b64: "aW1n"}
	llm := &fakeLLM{enabled: true, output: `{"titles":["Generated Title"],"descriptions":["Generated description."],"tags":["tag"]}`}

	credits := creditsservice.New(creditsservice.Params{DB: gdb, Log: log, Plans: plans, Repo: creditsrepo.Provide()})
	projects := projectservice.New(projectservice.Params{DB: gdb, Log: log, GenID: node, Repo: projectrepo.Provide()})
	purchases := purchaseservice.New(purchaseservice.Params{DB: gdb, Log: log, GenID: node, Repo: purchaserepo.Provide()})
	newsletters := newsletterservice.New(newsletterservice.Params{
		DB: gdb, Log: log, GenID: node,
		Repo: newsletterrepo.Provide(), Beehiiv: beehiiv.NewClient(config.Config{}),
	})

	thumbnails := thumbnail.New(thumbnail.Params{Log: log, Credits: credits, Images: images})
	contents := content.NewService(llm)
	prompts := prompt.NewBuilder(llm)
	orch := generation.New(generation.Params{
		Log: log, Credits: credits, Prompts: prompts,
		Thumbnails: thumbnails, Contents: contents, Projects: projects,
	})

	stripeClient := stripe.NewClient(cfg)
	billingSvc := billing.New(billing.Params{
		Log: log, Config: cfg, Plans: plans,
		Stripe: stripeClient, Verifier: stripe.NewWebhookVerifier(cfg.StripeWebhookSecret),
		Credits: credits, Purchases: purchases,
	})

	engine := NewEngine(cfg, nil)
	NewServer(ServerParams{
		Gin:           engine,
		Cfg:           cfg,
		Log:           log,
		Limiter:       ratelimit.NewLimiter(clock.NewFakeClock(time.Unix(1_700_000_000, 0))),
		CreditsSvc:    credits,
		ProjectSvc:    projects,
		PurchaseSvc:   purchases,
		NewsletterSvc: newsletters,
		BillingSvc:    billingSvc,
		ThumbnailSvc:  thumbnails,
		ContentSvc:    contents,
		PromptBuilder: prompts,
		Orchestrator:  orch,
	})

	return &harness{engine: engine, credits: credits, images: images, llm: llm}
}

func signToken(t *testing.T, sub, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthReportsConfigState(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "degraded", body["status"], "provider keys missing in test config")
	assert.Equal(t, false, body["configValid"])

	features, ok := body["features"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, features["thumbnails"])
	assert.Equal(t, true, features["billing"])
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/credits", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/credits", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	signed, err := forged.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)
	rec = h.do(t, http.MethodGet, "/api/credits", signed, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSelectFreePlanAndReadCredits(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")

	rec := h.do(t, http.MethodPost, "/api/select-plan", token, gin.H{"planName": "free"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/credits", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 5, body["balance"])
	assert.Equal(t, "free", body["tier"])
}

func TestSelectPaidPlanRejected(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")

	rec := h.do(t, http.MethodPost, "/api/select-plan", token, gin.H{"planName": "pro"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decode(t, rec)["error"])
}

func TestGenerateThumbnail(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")
	require.NoError(t, h.credits.Grant(context.Background(), "user-1", 3, creditsdomain.TierFree))

	rec := h.do(t, http.MethodPost, "/api/generate-thumbnail", token, gin.H{"prompt": "a mountain at dawn"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "data:image/png;base64,aW1n", decode(t, rec)["imageUrl"])

	balance, err := h.credits.Balance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, balance)
}

func TestGenerateThumbnailInsufficientCredits(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")

	rec := h.do(t, http.MethodPost, "/api/generate-thumbnail", token, gin.H{"prompt": "a mountain"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient_credits", decode(t, rec)["error"])
	assert.Zero(t, h.images.calls)
}

func TestGenerateThumbnailContentPolicy(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")
	require.NoError(t, h.credits.Grant(context.Background(), "user-1", 2, creditsdomain.TierFree))
	h.images.err = openaiimg.ErrContentPolicy

	rec := h.do(t, http.MethodPost, "/api/generate-thumbnail", token, gin.H{"prompt": "something disallowed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, thumbnail.CodeContentPolicy, body["error"])
	assert.Equal(t, true, body["creditRefunded"])

	balance, err := h.credits.Balance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, balance, "debit refunded")
}

func TestStudioGenerateEndToEnd(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")
	require.NoError(t, h.credits.Grant(context.Background(), "user-1", 3, creditsdomain.TierFree))

	rec := h.do(t, http.MethodPost, "/api/studio/generate", token, gin.H{
		"description": "a chef cooking pasta",
		"style":       prompt.StyleBeast,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "data:image/png;base64,aW1n", body["imageUrl"])
	require.NotNil(t, body["project"])

	rec = h.do(t, http.MethodGet, "/api/projects", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	projects, ok := decode(t, rec)["projects"].([]any)
	require.True(t, ok)
	assert.Len(t, projects, 1)
}

func TestSaveAndUpdateProject(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")

	rec := h.do(t, http.MethodPost, "/api/save-project", token, gin.H{
		"imageUrl":               "data:image/png;base64,aW1n",
		"selectedStyleId":        "beast-style",
		"generatedYtTitle":       "First Title",
		"generatedYtDescription": "First description.",
		"generatedYtTags":        []string{"one", "two"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/update-project-content", token, gin.H{
		"selectedStyleId":  "beast-style",
		"generatedYtTitle": "Second Title",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	project, ok := decode(t, rec)["project"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Second Title", project["generatedYtTitle"])
	assert.Equal(t, "First description.", project["generatedYtDescription"], "sparse update keeps other fields")
}

func TestSaveProjectRequiresImageURL(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")

	for name, body := range map[string]gin.H{
		"missing":    {"selectedStyleId": "beast-style"},
		"empty":      {"selectedStyleId": "beast-style", "imageUrl": ""},
		"non_https":  {"selectedStyleId": "beast-style", "imageUrl": "http://cdn.example.com/a.png"},
		"not_an_img": {"selectedStyleId": "beast-style", "imageUrl": "data:text/html,x"},
	} {
		rec := h.do(t, http.MethodPost, "/api/save-project", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Equal(t, "invalid_request", decode(t, rec)["error"], name)
	}
}

func TestUpdateProjectThumbnailMissing(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")

	rec := h.do(t, http.MethodPost, "/api/update-project-thumbnail", token, gin.H{
		"selectedStyleId": "beast-style",
		"imageUrl":        "data:image/png;base64,aW1n",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProjectContentMissing(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")

	rec := h.do(t, http.MethodPost, "/api/update-project-content", token, gin.H{
		"selectedStyleId":  "beast-style",
		"generatedYtTitle": "Anything",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitExceeded(t *testing.T) {
	h := newHarness(t)
	token := signToken(t, "user-1", "user@example.com")
	require.NoError(t, h.credits.Grant(context.Background(), "user-1", 20, creditsdomain.TierFree))

	var last *httptest.ResponseRecorder
	for i := 0; i < ratelimit.AIGeneration.MaxRequests+1; i++ {
		last = h.do(t, http.MethodPost, "/api/generate-thumbnail", token, gin.H{"prompt": "p"})
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))

	body := decode(t, last)
	assert.Equal(t, "rate_limit_exceeded", body["error"])
	assert.NotNil(t, body["retryAfter"])
}

func TestNewsletterSubscribe(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/newsletter", "", gin.H{"email": "reader@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/newsletter", "", gin.H{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe",
		bytes.NewReader([]byte(`{"id":"evt_1","type":"checkout.session.completed"}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_webhook", decode(t, rec)["error"])
}

func TestCORSHeaders(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
