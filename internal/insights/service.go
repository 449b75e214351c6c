// Package insights asks a text-generation collaborator for short business
// observations over the owner's numbers. The collaborator is strictly
// optional: any failure, malformed reply included, yields a static
// fallback set and is never surfaced as an error or retried.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/analytics"
)

// Insight is one generated observation.
type Insight struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Type  string `json:"type"`
}

// AnalyticsPort supplies the numbers the prompt is built from.
type AnalyticsPort interface {
	GetKPISummary(ctx context.Context, filter analytics.Filter) (analytics.KPISummary, error)
	GetMonthlyTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]analytics.TrendPoint, error)
}

// Service builds prompts and parses responses.
type Service struct {
	logger    *slog.Logger
	generator Generator
	reports   AnalyticsPort
}

// NewService constructs insights service. generator may be nil, in which
// case every request answers with the fallback set.
func NewService(logger *slog.Logger, generator Generator, reports AnalyticsPort) *Service {
	return &Service{logger: logger, generator: generator, reports: reports}
}

var fallbackInsights = []Insight{
	{Title: "متابعة المبيعات", Text: "راجع مبيعات هذا الشهر وقارنها بالشهر الماضي لتحديد الاتجاه.", Type: "info"},
	{Title: "مراقبة المخزون", Text: "تحقق من المنتجات منخفضة المخزون وخطط لإعادة التوريد مبكراً.", Type: "warning"},
	{Title: "تحصيل الديون", Text: "تابع العملاء أصحاب الديون المستحقة لتحسين التدفق النقدي.", Type: "info"},
}

// Generate returns insights for the owner's recent numbers. The returned
// slice is never empty and the error is always nil by contract; collaborator
// failures are logged and absorbed by the fallback.
func (s *Service) Generate(ctx context.Context, ownerID uuid.UUID) []Insight {
	if s.generator == nil {
		return fallbackInsights
	}
	prompt, err := s.buildPrompt(ctx, ownerID)
	if err != nil {
		s.logger.Warn("insight context unavailable", slog.Any("error", err))
		return fallbackInsights
	}
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("insight generation failed", slog.Any("error", err))
		return fallbackInsights
	}
	parsed, err := parseInsights(raw)
	if err != nil {
		s.logger.Warn("insight reply unparseable", slog.Any("error", err))
		return fallbackInsights
	}
	return parsed
}

func (s *Service) buildPrompt(ctx context.Context, ownerID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	filter := analytics.Filter{
		OwnerID: ownerID,
		From:    time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:      now.Add(24 * time.Hour),
	}
	kpi, err := s.reports.GetKPISummary(ctx, filter)
	if err != nil {
		return "", err
	}
	trend, err := s.reports.GetMonthlyTrend(ctx, ownerID, 3)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a retail business advisor. Given this store's numbers, ")
	b.WriteString("reply with ONLY a JSON array of objects {\"title\",\"text\",\"type\"} ")
	b.WriteString("where type is one of info, warning, success. Write title and text in Arabic.\n")
	fmt.Fprintf(&b, "This month: revenue=%d cogs=%d expenses=%d profit=%d\n",
		kpi.Revenue, kpi.COGS, kpi.Expenses, kpi.Profit)
	fmt.Fprintf(&b, "Balances: cash=%d receivables=%d payables=%d stock_value=%d low_stock_products=%d\n",
		kpi.CashOnHand, kpi.Receivables, kpi.Payables, kpi.StockValue, kpi.LowStockCount)
	for _, p := range trend {
		fmt.Fprintf(&b, "Month %s: sales=%d expenses=%d\n", p.Month, p.Sales, p.Expenses)
	}
	return b.String(), nil
}

// parseInsights accepts either a bare JSON array or one wrapped in
// markdown code fences.
func parseInsights(raw string) ([]Insight, error) {
	trimmed := strings.TrimSpace(raw)
	if start := strings.Index(trimmed, "["); start >= 0 {
		if end := strings.LastIndex(trimmed, "]"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}
	var out []Insight
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty insight list")
	}
	return out, nil
}
