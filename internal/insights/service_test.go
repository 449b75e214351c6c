package insights

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bousala/bousala/internal/analytics"
)

type stubReports struct {
	kpiErr error
}

func (s *stubReports) GetKPISummary(ctx context.Context, filter analytics.Filter) (analytics.KPISummary, error) {
	if s.kpiErr != nil {
		return analytics.KPISummary{}, s.kpiErr
	}
	return analytics.KPISummary{Revenue: 5000, COGS: 2000, Profit: 3000}, nil
}

func (s *stubReports) GetMonthlyTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]analytics.TrendPoint, error) {
	return []analytics.TrendPoint{{Month: "2026-08", Sales: 5000, Expenses: 1200}}, nil
}

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.reply, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestGenerateParsesJSONReply(t *testing.T) {
	gen := &stubGenerator{reply: `[{"title":"نمو المبيعات","text":"المبيعات في تحسن","type":"success"}]`}
	svc := NewService(testLogger(), gen, &stubReports{})

	out := svc.Generate(context.Background(), uuid.New())
	require.Len(t, out, 1)
	require.Equal(t, "نمو المبيعات", out[0].Title)
	require.Equal(t, "success", out[0].Type)
}

func TestGenerateStripsCodeFences(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n[{\"title\":\"t\",\"text\":\"x\",\"type\":\"info\"}]\n```"}
	svc := NewService(testLogger(), gen, &stubReports{})

	out := svc.Generate(context.Background(), uuid.New())
	require.Len(t, out, 1)
	require.Equal(t, "t", out[0].Title)
}

func TestGenerateFallsBackOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream down")}
	svc := NewService(testLogger(), gen, &stubReports{})

	out := svc.Generate(context.Background(), uuid.New())
	require.Equal(t, fallbackInsights, out)
}

func TestGenerateFallsBackOnMalformedReply(t *testing.T) {
	gen := &stubGenerator{reply: "sorry, I cannot help with that"}
	svc := NewService(testLogger(), gen, &stubReports{})

	out := svc.Generate(context.Background(), uuid.New())
	require.Equal(t, fallbackInsights, out)
}

func TestGenerateFallsBackWhenAnalyticsUnavailable(t *testing.T) {
	gen := &stubGenerator{reply: `[{"title":"t","text":"x","type":"info"}]`}
	svc := NewService(testLogger(), gen, &stubReports{kpiErr: errors.New("db down")})

	out := svc.Generate(context.Background(), uuid.New())
	require.Equal(t, fallbackInsights, out)
}

func TestGenerateWithoutGenerator(t *testing.T) {
	svc := NewService(testLogger(), nil, &stubReports{})
	out := svc.Generate(context.Background(), uuid.New())
	require.Equal(t, fallbackInsights, out)
}

func TestClientSendsChatRequest(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "advisor-small", req.Model)
		require.Len(t, req.Messages, 1)

		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "[]"}}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", "advisor-small")
	reply, err := client.Generate(context.Background(), "summarize")
	require.NoError(t, err)
	require.Equal(t, "[]", reply)
	require.Equal(t, "Bearer secret", gotAuth)
}

func TestClientSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "advisor-small")
	_, err := client.Generate(context.Background(), "summarize")
	require.Error(t, err)
}
