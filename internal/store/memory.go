package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vrpsolve/internal/model"
)

// Memory is the in-process store used when no DATABASE_URL is set.
type Memory struct {
	mu        sync.Mutex
	problems  map[string]model.ProblemRecord
	probByTen map[string][]string
	solutions map[string]model.SolutionRecord
	solByTen  map[string][]string
	subs      map[string][]model.Subscription

	deliveries map[string]*memDelivery
	delivByTen map[string][]string
}

// memDelivery augments WebhookDelivery with scheduling state.
type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
	DeliveredAt   *time.Time
}

func NewMemory() *Memory {
	return &Memory{
		problems:   map[string]model.ProblemRecord{},
		probByTen:  map[string][]string{},
		solutions:  map[string]model.SolutionRecord{},
		solByTen:   map[string][]string{},
		subs:       map[string][]model.Subscription{},
		deliveries: map[string]*memDelivery{},
		delivByTen: map[string][]string{},
	}
}

func (m *Memory) CreateProblem(ctx context.Context, tenantID, name string, p *model.Problem) (model.ProblemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := model.ProblemRecord{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Problem:   p,
		Jobs:      len(p.Plan.Jobs),
		Vehicles:  len(p.Fleet.Vehicles),
	}
	m.problems[rec.ID] = rec
	m.probByTen[tenantID] = append(m.probByTen[tenantID], rec.ID)
	return rec, nil
}

func (m *Memory) GetProblem(ctx context.Context, tenantID, id string) (model.ProblemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.problems[id]
	if !ok || rec.TenantID != tenantID {
		return model.ProblemRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) ListProblems(ctx context.Context, tenantID, cursor string, limit int) ([]model.ProblemRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.probByTen[tenantID]
	out := []model.ProblemRecord{}
	next := ""
	for _, id := range page(ids, cursor, limit) {
		rec := m.problems[id]
		rec.Problem = nil // summaries only
		out = append(out, rec)
		next = id
	}
	if len(out) < limit || limit <= 0 {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) CreateSolution(ctx context.Context, tenantID, problemID string) (model.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.problems[problemID]; !ok || rec.TenantID != tenantID {
		return model.SolutionRecord{}, ErrNotFound
	}
	rec := model.SolutionRecord{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ProblemID: problemID,
		Status:    "pending",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.solutions[rec.ID] = rec
	m.solByTen[tenantID] = append(m.solByTen[tenantID], rec.ID)
	return rec, nil
}

func (m *Memory) SetSolutionStatus(ctx context.Context, id, status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.solutions[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	rec.Error = errMsg
	m.solutions[id] = rec
	return nil
}

func (m *Memory) CompleteSolution(ctx context.Context, id string, sol *model.Solution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.solutions[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = "completed"
	rec.Error = ""
	rec.Solution = sol
	m.solutions[id] = rec
	return nil
}

func (m *Memory) GetSolution(ctx context.Context, tenantID, id string) (model.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.solutions[id]
	if !ok || rec.TenantID != tenantID {
		return model.SolutionRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) ListSolutions(ctx context.Context, tenantID, problemID, cursor string, limit int) ([]model.SolutionRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.solByTen[tenantID]
	if problemID != "" {
		// filter before paging so windows stay full
		filtered := make([]string, 0, len(ids))
		for _, id := range ids {
			if m.solutions[id].ProblemID == problemID {
				filtered = append(filtered, id)
			}
		}
		ids = filtered
	}
	out := []model.SolutionRecord{}
	next := ""
	for _, id := range page(ids, cursor, limit) {
		rec := m.solutions[id]
		rec.Solution = nil // summaries only
		out = append(out, rec)
		next = id
	}
	if len(out) < limit || limit <= 0 {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := model.Subscription{
		ID:       uuid.New().String(),
		TenantID: req.TenantID,
		URL:      req.URL,
		Events:   req.Events,
		Secret:   req.Secret,
	}
	m.subs[req.TenantID] = append(m.subs[req.TenantID], sub)
	return sub, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Subscription{}
	for _, s := range m.subs[tenantID] {
		for _, e := range s.Events {
			if e == eventType || e == "*" {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Subscription{}
	for _, s := range m.subs[tenantID] {
		s.Secret = ""
		out = append(out, s)
	}
	return out, "", nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subs[tenantID]
	for i, s := range subs {
		if s.ID == id {
			m.subs[tenantID] = append(subs[:i], subs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &memDelivery{
		WebhookDelivery: WebhookDelivery{
			ID: id, TenantID: tenantID, SubscriptionID: subscriptionID,
			EventType: eventType, URL: url, Secret: secret, Payload: payload,
			Status: "pending",
		},
		NextAttemptAt: time.Now(),
	}
	m.delivByTen[tenantID] = append(m.delivByTen[tenantID], id)
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	out := []WebhookDelivery{}
	for _, d := range m.deliveries {
		if d.Status == "pending" && !d.NextAttemptAt.After(now) {
			out = append(out, d.WebhookDelivery)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
		now := time.Now()
		d.DeliveredAt = &now
	} else if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}

func (m *Memory) ListWebhookDeliveries(ctx context.Context, tenantID, status string, limit int) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []map[string]any{}
	for _, id := range m.delivByTen[tenantID] {
		d := m.deliveries[id]
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, map[string]any{
			"id": d.ID, "eventType": d.EventType, "url": d.URL,
			"status": d.Status, "attempts": d.Attempts,
			"lastError": d.LastError, "responseCode": d.ResponseCode,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// page slices ids after the cursor, at most limit entries.
func page(ids []string, cursor string, limit int) []string {
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}
