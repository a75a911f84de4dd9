package store

import (
	"context"
	"errors"
	"time"

	"vrpsolve/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Problems
	CreateProblem(ctx context.Context, tenantID, name string, p *model.Problem) (model.ProblemRecord, error)
	GetProblem(ctx context.Context, tenantID, id string) (model.ProblemRecord, error)
	ListProblems(ctx context.Context, tenantID, cursor string, limit int) ([]model.ProblemRecord, string, error)

	// Solutions
	CreateSolution(ctx context.Context, tenantID, problemID string) (model.SolutionRecord, error)
	SetSolutionStatus(ctx context.Context, id, status, errMsg string) error
	CompleteSolution(ctx context.Context, id string, sol *model.Solution) error
	GetSolution(ctx context.Context, tenantID, id string) (model.SolutionRecord, error)
	ListSolutions(ctx context.Context, tenantID, problemID, cursor string, limit int) ([]model.SolutionRecord, string, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, tenantID, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
	ListWebhookDeliveries(ctx context.Context, tenantID, status string, limit int) ([]map[string]any, error)
}

// WebhookDelivery is one queued outbound notification.
type WebhookDelivery struct {
	ID             string
	TenantID       string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Status         string
	Attempts       int
}

var ErrNotFound = errors.New("not found")
