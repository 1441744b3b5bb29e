package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pantry-cookbook/internal/core/ai/cache"
	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *mockCompleter) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func enabledConfig() config.AIConfig {
	return config.AIConfig{
		Enabled:             true,
		BaseURL:             "http://localhost:1234/v1",
		Model:               "local-model",
		MaxTokens:           1000,
		Temperature:         0.3,
		Timeout:             time.Second,
		HealthCheckInterval: time.Minute,
	}
}

func newTestService(t *testing.T, client Completer) *Service {
	t.Helper()
	l1 := cache.New(cache.Options{MaxSize: 32, TTL: time.Minute})
	t.Cleanup(func() { _ = l1.Close() })
	return NewServiceWithClient(enabledConfig(), client, l1, nil)
}

func TestAvailableDisabled(t *testing.T) {
	m := &mockCompleter{}
	cfg := enabledConfig()
	cfg.Enabled = false
	svc := NewServiceWithClient(cfg, m, nil, nil)

	assert.False(t, svc.Available(context.Background()))
	_, err := svc.ProcessRequest(context.Background(), "hi", 10)
	assert.ErrorIs(t, err, common.ErrAIUnavailable)
	m.AssertNotCalled(t, "Health", mock.Anything)

	var nilSvc *Service
	assert.False(t, nilSvc.Available(context.Background()))
}

func TestAvailableCachesHealth(t *testing.T) {
	m := &mockCompleter{}
	m.On("Health", mock.Anything).Return(nil).Once()
	svc := newTestService(t, m)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	assert.True(t, svc.Available(context.Background()))
	now = now.Add(30 * time.Second)
	assert.True(t, svc.Available(context.Background()))
	m.AssertNumberOfCalls(t, "Health", 1)

	m.On("Health", mock.Anything).Return(errors.New("down")).Once()
	now = now.Add(2 * time.Minute)
	assert.False(t, svc.Available(context.Background()))
	m.AssertNumberOfCalls(t, "Health", 2)
}

func TestProcessRequestUsesCache(t *testing.T) {
	m := &mockCompleter{}
	m.On("Generate", mock.Anything, "hello there", 50).Return("general kenobi", nil).Once()
	svc := newTestService(t, m)

	got, err := svc.ProcessRequest(context.Background(), "  hello\n\tthere ", 50)
	require.NoError(t, err)
	assert.Equal(t, "general kenobi", got)

	got, err = svc.ProcessRequest(context.Background(), "hello there", 50)
	require.NoError(t, err)
	assert.Equal(t, "general kenobi", got)
	m.AssertExpectations(t)
}

func TestProcessRequestMapsErrors(t *testing.T) {
	m := &mockCompleter{}
	m.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("connection refused"))
	svc := newTestService(t, m)

	_, err := svc.ProcessRequest(context.Background(), "anything", 10)
	assert.ErrorIs(t, err, common.ErrAIUnavailable)
}

func TestParseIngredients(t *testing.T) {
	m := &mockCompleter{}
	m.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "- 2 cups flour, sifted") && strings.Contains(p, "- salt to taste")
	}), tokensIngredients).Return(`Sure! Here you go:
[{"quantity": 2, "unit": "Cups", "name": "Flour", "preparation": "sifted", "optional": false},
 {"quantity": 0, "unit": "", "name": "salt", "preparation": "", "optional": true}]`, nil)
	svc := newTestService(t, m)

	got, err := svc.ParseIngredients(context.Background(), []string{"2 cups flour, sifted", "salt to taste"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, common.ParsedIngredient{Quantity: 2, Unit: "cups", Name: "flour", Preparation: "sifted", Original: "2 cups flour, sifted"}, got[0])
	assert.True(t, got[1].Optional)
	assert.Equal(t, "salt to taste", got[1].Original)
}

func TestParseIngredientsRejectsProse(t *testing.T) {
	m := &mockCompleter{}
	m.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("I cannot help with that.", nil)
	svc := newTestService(t, m)

	_, err := svc.ParseIngredients(context.Background(), []string{"1 egg"})
	assert.ErrorIs(t, err, common.ErrAIUnavailable)
}

func TestEnhanceScrapingTruncatesAndDecodesLoosely(t *testing.T) {
	html := "<html>" + strings.Repeat("a", 5000) + "</html>"
	m := &mockCompleter{}
	m.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return !strings.Contains(p, "</html>") && strings.Contains(p, "https://example.com/stew")
	}), tokensScrape).Return(`{"title": "Beef Stew", "ingredients": ["1 lb beef", "2 carrots"],
 "instructions": ["Brown the beef.", "Simmer with carrots."], "servings": 4, "dietary_tags": "gluten-free"}`, nil)
	svc := newTestService(t, m)

	got, err := svc.EnhanceScraping(context.Background(), html, "https://example.com/stew")
	require.NoError(t, err)
	assert.Equal(t, "Beef Stew", got.Title)
	assert.Equal(t, []string{"1 lb beef", "2 carrots"}, got.Ingredients)
	assert.Equal(t, "Brown the beef.\nSimmer with carrots.", got.Instructions)
	assert.Equal(t, "4", got.Servings)
	assert.Equal(t, []string{"gluten-free"}, got.DietaryTags)
}

func TestSuggestIngredients(t *testing.T) {
	m := &mockCompleter{}
	m.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Available ingredients: rice, eggs")
	}), tokensSuggestions).Return(`["scallions", 3, "soy sauce", " "]`, nil)
	svc := newTestService(t, m)

	got, err := svc.SuggestIngredients(context.Background(), "Fried Rice", []string{"rice", "eggs"}, []string{"rice", "eggs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"scallions", "soy sauce"}, got)
}

func TestImproveInstructions(t *testing.T) {
	m := &mockCompleter{}
	m.On("Generate", mock.Anything, mock.Anything, tokensInstructions).Return("  1. Rinse the rice well.\n2. Cook gently.  ", nil)
	svc := newTestService(t, m)

	got, err := svc.ImproveInstructions(context.Background(), "Rice", "cook rice")
	require.NoError(t, err)
	assert.Equal(t, "1. Rinse the rice well.\n2. Cook gently.", got)
}

func TestEstimateNutrition(t *testing.T) {
	m := &mockCompleter{}
	m.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Servings: 2")
	}), tokensNutrition).Return(`{"calories": 350, "protein_g": 12.5}`, nil).Once()
	svc := newTestService(t, m)

	got, err := svc.EstimateNutrition(context.Background(), "Rice", 2, []string{"1 cup rice"})
	require.NoError(t, err)
	assert.InDelta(t, 350, got["calories"], 1e-9)
	assert.InDelta(t, 12.5, got["protein_g"], 1e-9)

	m.On("Generate", mock.Anything, mock.Anything, tokensNutrition).Return(`{"calories": -5}`, nil).Once()
	_, err = svc.EstimateNutrition(context.Background(), "Soup", 4, []string{"water"})
	assert.ErrorIs(t, err, common.ErrAIUnavailable)
}

func TestStatus(t *testing.T) {
	m := &mockCompleter{}
	m.On("Health", mock.Anything).Return(nil)
	svc := newTestService(t, m)

	st := svc.Status(context.Background())
	assert.True(t, st.Enabled)
	assert.True(t, st.Available)
	assert.Equal(t, "local-model", st.Model)
	assert.NotNil(t, st.LastChecked)
	assert.Equal(t, true, st.Cache["enabled"])
	assert.False(t, st.Redis)
}

func TestClientAgainstOpenAICompatibleServer(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data":[]}`))
		case "/v1/chat/completions":
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","choices":[{"message":{"role":"assistant","content":" hello "}}],"usage":{"total_tokens":7}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := enabledConfig()
	cfg.BaseURL = srv.URL + "/v1/"
	cfg.APIKey = "secret"
	client := NewClient(cfg)

	require.NoError(t, client.Health(context.Background()))

	content, err := client.Generate(context.Background(), "say hi", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	assert.Equal(t, "local-model", got.Model)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, systemPrompt, got.Messages[0].Content)
	assert.Equal(t, "say hi", got.Messages[1].Content)
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chat/completions" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := enabledConfig()
	cfg.BaseURL = srv.URL
	client := NewClient(cfg)

	assert.Error(t, client.Health(context.Background()))
	_, err := client.Generate(context.Background(), "x", 10)
	assert.Error(t, err)
}

func TestSanitizeBody(t *testing.T) {
	assert.Equal(t, "[BASE64_DATA_REMOVED]", sanitizeBody([]byte(`{"url":"data:image/png;base64,AAAA"}`)))
	assert.Equal(t, "short", sanitizeBody([]byte("short")))
	assert.True(t, strings.HasSuffix(sanitizeBody([]byte(strings.Repeat("x", 400))), "...(400 bytes)"))
}
