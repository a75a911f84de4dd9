package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vrpsolve/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// MigrateDir applies every *.sql file in dir in lexical order. Statements
// are idempotent (CREATE TABLE IF NOT EXISTS) so re-running is safe.
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return err
		}
		if _, err := p.db.Exec(string(sqlBytes)); err != nil {
			return fmt.Errorf("migrate %s: %w", f, err)
		}
	}
	return nil
}

func (p *Postgres) CreateProblem(ctx context.Context, tenantID, name string, prob *model.Problem) (model.ProblemRecord, error) {
	id := uuid.New().String()
	body, err := json.Marshal(prob)
	if err != nil {
		return model.ProblemRecord{}, err
	}
	vehicles := 0
	for _, vt := range prob.Fleet.Vehicles {
		vehicles += len(vt.VehicleIDs)
	}
	now := time.Now().UTC()
	_, err = p.db.ExecContext(ctx, `INSERT INTO problems (id, tenant_id, name, body, jobs, vehicles, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, tenantID, nullIfEmpty(name), body, len(prob.Plan.Jobs), vehicles, now)
	if err != nil {
		return model.ProblemRecord{}, err
	}
	return model.ProblemRecord{
		ID: id, TenantID: tenantID, Name: name,
		CreatedAt: now.Format(time.RFC3339),
		Problem:   prob, Jobs: len(prob.Plan.Jobs), Vehicles: vehicles,
	}, nil
}

func (p *Postgres) GetProblem(ctx context.Context, tenantID, id string) (model.ProblemRecord, error) {
	var rec model.ProblemRecord
	var name sql.NullString
	var body []byte
	var created time.Time
	err := p.db.QueryRowContext(ctx, `SELECT id::text, name, body, jobs, vehicles, created_at FROM problems WHERE tenant_id=$1 AND id=$2`, tenantID, id).
		Scan(&rec.ID, &name, &body, &rec.Jobs, &rec.Vehicles, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, ErrNotFound
		}
		return rec, err
	}
	rec.TenantID = tenantID
	rec.Name = name.String
	rec.CreatedAt = created.UTC().Format(time.RFC3339)
	var prob model.Problem
	if err := json.Unmarshal(body, &prob); err != nil {
		return rec, err
	}
	rec.Problem = &prob
	return rec, nil
}

func (p *Postgres) ListProblems(ctx context.Context, tenantID, cursor string, limit int) ([]model.ProblemRecord, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx, `SELECT id::text, name, jobs, vehicles, created_at FROM problems WHERE tenant_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`, tenantID, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx, `SELECT id::text, name, jobs, vehicles, created_at FROM problems WHERE tenant_id=$1 ORDER BY id LIMIT $2`, tenantID, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.ProblemRecord{}
	var last string
	for rows.Next() {
		var rec model.ProblemRecord
		var name sql.NullString
		var created time.Time
		if err := rows.Scan(&rec.ID, &name, &rec.Jobs, &rec.Vehicles, &created); err != nil {
			return nil, "", err
		}
		rec.TenantID = tenantID
		rec.Name = name.String
		rec.CreatedAt = created.UTC().Format(time.RFC3339)
		out = append(out, rec)
		last = rec.ID
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (p *Postgres) CreateSolution(ctx context.Context, tenantID, problemID string) (model.SolutionRecord, error) {
	var exists string
	err := p.db.QueryRowContext(ctx, `SELECT id::text FROM problems WHERE tenant_id=$1 AND id=$2`, tenantID, problemID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SolutionRecord{}, ErrNotFound
		}
		return model.SolutionRecord{}, err
	}
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = p.db.ExecContext(ctx, `INSERT INTO solutions (id, tenant_id, problem_id, status, created_at) VALUES ($1,$2,$3,'pending',$4)`,
		id, tenantID, problemID, now)
	if err != nil {
		return model.SolutionRecord{}, err
	}
	return model.SolutionRecord{
		ID: id, TenantID: tenantID, ProblemID: problemID,
		Status: "pending", CreatedAt: now.Format(time.RFC3339),
	}, nil
}

func (p *Postgres) SetSolutionStatus(ctx context.Context, id, status, errMsg string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE solutions SET status=$1, error=$2, updated_at=now() WHERE id=$3`, status, nullIfEmpty(errMsg), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CompleteSolution(ctx context.Context, id string, sol *model.Solution) error {
	body, err := json.Marshal(sol)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `UPDATE solutions SET status='completed', body=$1, error=NULL, updated_at=now() WHERE id=$2`, body, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetSolution(ctx context.Context, tenantID, id string) (model.SolutionRecord, error) {
	var rec model.SolutionRecord
	var errMsg sql.NullString
	var body []byte
	var created time.Time
	err := p.db.QueryRowContext(ctx, `SELECT id::text, problem_id::text, status, error, body, created_at FROM solutions WHERE tenant_id=$1 AND id=$2`, tenantID, id).
		Scan(&rec.ID, &rec.ProblemID, &rec.Status, &errMsg, &body, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, ErrNotFound
		}
		return rec, err
	}
	rec.TenantID = tenantID
	rec.Error = errMsg.String
	rec.CreatedAt = created.UTC().Format(time.RFC3339)
	if len(body) > 0 {
		var sol model.Solution
		if err := json.Unmarshal(body, &sol); err != nil {
			return rec, err
		}
		rec.Solution = &sol
	}
	return rec, nil
}

func (p *Postgres) ListSolutions(ctx context.Context, tenantID, problemID, cursor string, limit int) ([]model.SolutionRecord, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT id::text, problem_id::text, status, error, created_at FROM solutions WHERE tenant_id=$1`
	args := []any{tenantID}
	idx := 2
	if problemID != "" {
		q += ` AND problem_id=$` + fmt.Sprint(idx)
		args = append(args, problemID)
		idx++
	}
	if cursor != "" {
		q += ` AND id::text > $` + fmt.Sprint(idx)
		args = append(args, cursor)
		idx++
	}
	q += ` ORDER BY id LIMIT $` + fmt.Sprint(idx)
	args = append(args, limit)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.SolutionRecord{}
	var last string
	for rows.Next() {
		var rec model.SolutionRecord
		var errMsg sql.NullString
		var created time.Time
		if err := rows.Scan(&rec.ID, &rec.ProblemID, &rec.Status, &errMsg, &created); err != nil {
			return nil, "", err
		}
		rec.TenantID = tenantID
		rec.Error = errMsg.String
		rec.CreatedAt = created.UTC().Format(time.RFC3339)
		out = append(out, rec)
		last = rec.ID
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	id := uuid.New().String()
	ev, _ := json.Marshal(req.Events)
	_, err := p.db.ExecContext(ctx, `INSERT INTO subscriptions (id, tenant_id, url, events, secret) VALUES ($1,$2,$3,$4,$5)`,
		id, req.TenantID, req.URL, ev, nullIfEmpty(req.Secret))
	if err != nil {
		return model.Subscription{}, err
	}
	return model.Subscription{ID: id, TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id::text, url, COALESCE(secret,''), events FROM subscriptions WHERE tenant_id=$1 AND (events @> $2::jsonb OR events @> '["*"]'::jsonb)`,
		tenantID, fmt.Sprintf("[%q]", eventType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Subscription{}
	for rows.Next() {
		var s model.Subscription
		var ev []byte
		if err := rows.Scan(&s.ID, &s.URL, &s.Secret, &ev); err != nil {
			return nil, err
		}
		s.TenantID = tenantID
		_ = json.Unmarshal(ev, &s.Events)
		out = append(out, s)
	}
	return out, nil
}

func (p *Postgres) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx, `SELECT id::text, url, events FROM subscriptions WHERE tenant_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`, tenantID, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx, `SELECT id::text, url, events FROM subscriptions WHERE tenant_id=$1 ORDER BY id LIMIT $2`, tenantID, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Subscription{}
	var last string
	for rows.Next() {
		var s model.Subscription
		var ev []byte
		if err := rows.Scan(&s.ID, &s.URL, &ev); err != nil {
			return nil, "", err
		}
		s.TenantID = tenantID
		_ = json.Unmarshal(ev, &s.Events)
		out = append(out, s)
		last = s.ID
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (p *Postgres) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx, `INSERT INTO webhook_deliveries (id, tenant_id, subscription_id, event_type, url, secret, payload, status, attempts, next_attempt_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'pending',0,now())`,
		id, tenantID, nullIfEmpty(subscriptionID), eventType, url, nullIfEmpty(secret), payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id::text, tenant_id, COALESCE(subscription_id::text,''), event_type, url, COALESCE(secret,''), payload, status, attempts
		FROM webhook_deliveries WHERE status IN ('pending','retry') AND next_attempt_at <= now() ORDER BY next_attempt_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []WebhookDelivery{}
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	if !success {
		if nextAttemptAt == nil {
			t := time.Now().Add(time.Minute)
			nextAttemptAt = &t
		}
		_, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET attempts=attempts+1, status='retry', last_error=$2, next_attempt_at=$3, response_code=$4, latency_ms=$5, updated_at=now() WHERE id=$1`,
			id, nullIfEmpty(lastError), *nextAttemptAt, responseCode, latencyMs)
		return err
	}
	_, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET attempts=attempts+1, status='delivered', delivered_at=now(), response_code=$2, latency_ms=$3, updated_at=now() WHERE id=$1`,
		id, responseCode, latencyMs)
	return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	_, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET attempts=attempts+1, status='failed', last_error=$2, response_code=$3, latency_ms=$4, updated_at=now() WHERE id=$1`,
		id, nullIfEmpty(lastError), responseCode, latencyMs)
	return err
}

func (p *Postgres) ListWebhookDeliveries(ctx context.Context, tenantID, status string, limit int) ([]map[string]any, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT id::text, event_type, url, status, attempts, COALESCE(last_error,''), COALESCE(response_code,0) FROM webhook_deliveries WHERE tenant_id=$1`
	var rows *sql.Rows
	var err error
	if status != "" {
		q += ` AND status=$2 ORDER BY id LIMIT $3`
		rows, err = p.db.QueryContext(ctx, q, tenantID, status, limit)
	} else {
		q += ` ORDER BY id LIMIT $2`
		rows, err = p.db.QueryContext(ctx, q, tenantID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []map[string]any{}
	for rows.Next() {
		var id, typ, url, st, lastErr string
		var attempts, code int
		if err := rows.Scan(&id, &typ, &url, &st, &attempts, &lastErr, &code); err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"id": id, "eventType": typ, "url": url,
			"status": st, "attempts": attempts,
			"lastError": lastErr, "responseCode": code,
		})
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
