package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
)

// CategoryTotal is one bucket of consumption grouped by category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
}

// ItemTotal is one supply item's consumption total.
type ItemTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ReasonShare is one waste reason's share of total waste value.
type ReasonShare struct {
	Reason  string  `json:"reason"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// ConsumptionByCategory reduces records into per-category totals, largest
// value first.
func ConsumptionByCategory(records []model.ConsumptionRecord) []CategoryTotal {
	buckets := make(map[string]*CategoryTotal)
	for _, r := range records {
		category := r.Category
		if category == "" {
			category = "uncategorized"
		}
		b, ok := buckets[category]
		if !ok {
			b = &CategoryTotal{Category: category}
			buckets[category] = b
		}
		b.Quantity += r.Quantity
		b.Value += r.CostValue
	}

	totals := make([]CategoryTotal, 0, len(buckets))
	for _, b := range buckets {
		totals = append(totals, *b)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Value > totals[j].Value })
	return totals
}

// TopItemsByValue returns the n supply items with the highest consumed value.
func TopItemsByValue(records []model.ConsumptionRecord, n int) []ItemTotal {
	if n <= 0 {
		n = 5
	}
	buckets := make(map[string]float64)
	for _, r := range records {
		buckets[r.SupplyName] += r.CostValue
	}

	items := make([]ItemTotal, 0, len(buckets))
	for name, value := range buckets {
		items = append(items, ItemTotal{Name: name, Value: value})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// WasteByReason reduces wasted records into per-reason value shares. Records
// whose kind is not wasted are ignored.
func WasteByReason(records []model.ConsumptionRecord) []ReasonShare {
	buckets := make(map[string]float64)
	var total float64
	for _, r := range records {
		if r.Kind != model.ConsumptionWasted {
			continue
		}
		reason := r.Reason
		if reason == "" {
			reason = "other"
		}
		buckets[reason] += r.CostValue
		total += r.CostValue
	}

	shares := make([]ReasonShare, 0, len(buckets))
	for reason, value := range buckets {
		share := ReasonShare{Reason: reason, Value: value}
		if total > 0 {
			share.Percent = value / total * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].Value > shares[j].Value })
	return shares
}

// InsightService aggregates consumption history into dashboard panels, with
// Redis-cached results and an optional AI-written operations summary.
type InsightService struct {
	db     *gorm.DB
	redis  *redis.Client
	ai     *openai.Client
	clock  Clock
	logger *zap.Logger
}

// cached insight panels age out quickly; they back dashboards, not reports.
const insightCacheTTL = 5 * time.Minute

func NewInsightService(db *gorm.DB, redisClient *redis.Client, aiClient *openai.Client, clock Clock, logger *zap.Logger) *InsightService {
	if clock == nil {
		clock = systemClock{}
	}
	return &InsightService{db: db, redis: redisClient, ai: aiClient, clock: clock, logger: logger}
}

// NewOpenAIClient builds a client for an OpenAI-compatible endpoint, or nil
// when no key is configured.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (s *InsightService) records(ctx context.Context, since time.Time) ([]model.ConsumptionRecord, error) {
	var records []model.ConsumptionRecord
	if err := s.db.WithContext(ctx).Where("created_at >= ?", since).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Consumption returns per-category consumption totals for the window.
func (s *InsightService) Consumption(ctx context.Context, window time.Duration) ([]CategoryTotal, error) {
	var totals []CategoryTotal
	err := s.cached(ctx, fmt.Sprintf("insight:consumption:%s", window), &totals, func() (interface{}, error) {
		records, err := s.records(ctx, s.clock.Now().Add(-window))
		if err != nil {
			return nil, err
		}
		return ConsumptionByCategory(records), nil
	})
	return totals, err
}

// TopItems returns the highest-value consumed items for the window.
func (s *InsightService) TopItems(ctx context.Context, window time.Duration, n int) ([]ItemTotal, error) {
	var items []ItemTotal
	err := s.cached(ctx, fmt.Sprintf("insight:top:%s:%d", window, n), &items, func() (interface{}, error) {
		records, err := s.records(ctx, s.clock.Now().Add(-window))
		if err != nil {
			return nil, err
		}
		return TopItemsByValue(records, n), nil
	})
	return items, err
}

// Waste returns waste value shares by reason for the window.
func (s *InsightService) Waste(ctx context.Context, window time.Duration) ([]ReasonShare, error) {
	var shares []ReasonShare
	err := s.cached(ctx, fmt.Sprintf("insight:waste:%s", window), &shares, func() (interface{}, error) {
		records, err := s.records(ctx, s.clock.Now().Add(-window))
		if err != nil {
			return nil, err
		}
		return WasteByReason(records), nil
	})
	return shares, err
}

// Summary produces a short operations summary of the window's consumption and
// waste. When an AI client is configured it writes the text; otherwise a
// deterministic summary is assembled from the aggregates.
func (s *InsightService) Summary(ctx context.Context, window time.Duration) (string, error) {
	records, err := s.records(ctx, s.clock.Now().Add(-window))
	if err != nil {
		return "", err
	}

	categories := ConsumptionByCategory(records)
	waste := WasteByReason(records)

	if s.ai != nil {
		text, err := s.aiSummary(ctx, categories, waste)
		if err == nil {
			return text, nil
		}
		s.logger.Warn("AI summary failed, falling back to aggregate summary", zap.Error(err))
	}

	return buildSummary(categories, waste), nil
}

func (s *InsightService) aiSummary(ctx context.Context, categories []CategoryTotal, waste []ReasonShare) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"consumption_by_category": categories,
		"waste_by_reason":         waste,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.ai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an operations analyst for a restaurant and fleet business. Summarize the following kitchen consumption and waste aggregates in three short sentences for a manager. Be concrete about the largest numbers.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: string(payload),
			},
		},
		MaxTokens: 200,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildSummary is the deterministic fallback summary.
func buildSummary(categories []CategoryTotal, waste []ReasonShare) string {
	var b strings.Builder

	if len(categories) == 0 {
		b.WriteString("No consumption recorded in this period.")
	} else {
		var total float64
		for _, c := range categories {
			total += c.Value
		}
		fmt.Fprintf(&b, "Consumption totaled %.2f across %d categories; the largest was %s at %.2f.",
			total, len(categories), categories[0].Category, categories[0].Value)
	}

	if len(waste) > 0 {
		fmt.Fprintf(&b, " The leading waste reason was %s at %.1f%% of waste value.",
			waste[0].Reason, waste[0].Percent)
	}

	return b.String()
}

// cached runs compute and stores its JSON result in Redis, serving subsequent
// calls from cache until the TTL expires. Without a Redis client it computes
// directly.
func (s *InsightService) cached(ctx context.Context, key string, out interface{}, compute func() (interface{}, error)) error {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			if json.Unmarshal(data, out) == nil {
				return nil
			}
		}
	}

	value, err := compute()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, data, insightCacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache insight", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
