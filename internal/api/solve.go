package api

import (
	"context"
	"time"

	"vrpsolve/internal/metrics"
	"vrpsolve/internal/model"
	"vrpsolve/internal/solver"
	"vrpsolve/internal/webhooks"
)

// runSolve executes one solver run for a stored solution record,
// publishing progress on the broker and fanning out webhooks on
// completion. Blocking; async callers run it in a goroutine.
func (s *Server) runSolve(ctx context.Context, tenant string, rec model.SolutionRecord, prob *model.Problem, req model.SolveRequest) {
	_ = s.Store.SetSolutionStatus(ctx, rec.ID, "running", "")
	s.Broker.Publish(rec.ID, SSEEvent{Type: "solve.started", Data: map[string]any{
		"solutionId": rec.ID, "problemId": rec.ProblemID,
		"ts": time.Now().UTC().Format(time.RFC3339),
	}})

	sol, m, err := s.solve(ctx, rec.ID, prob, req)
	if err != nil {
		metrics.SolveRuns.WithLabelValues("failed").Inc()
		_ = s.Store.SetSolutionStatus(ctx, rec.ID, "failed", err.Error())
		data := map[string]any{
			"solutionId": rec.ID, "problemId": rec.ProblemID,
			"error": err.Error(), "ts": time.Now().UTC().Format(time.RFC3339),
		}
		s.Broker.Publish(rec.ID, SSEEvent{Type: "solve.failed", Data: data})
		s.Pub.Emit(ctx, tenant, webhooks.EventSolutionFailed, data)
		return
	}

	metrics.SolveRuns.WithLabelValues("completed").Inc()
	metrics.SolveGenerations.Observe(float64(m.Generations))
	metrics.UnassignedJobs.Observe(float64(len(sol.Unassigned)))
	_ = s.Store.CompleteSolution(ctx, rec.ID, sol)
	data := map[string]any{
		"solutionId": rec.ID, "problemId": rec.ProblemID,
		"cost":        sol.Statistic.Cost,
		"tours":       len(sol.Tours),
		"unassigned":  len(sol.Unassigned),
		"generations": m.Generations,
		"ts":          time.Now().UTC().Format(time.RFC3339),
	}
	s.Broker.Publish(rec.ID, SSEEvent{Type: "solve.completed", Data: data})
	s.Pub.Emit(ctx, tenant, webhooks.EventSolutionCompleted, data)
}

func (s *Server) solve(ctx context.Context, solutionID string, prob *model.Problem, req model.SolveRequest) (*model.Solution, solver.Metrics, error) {
	b, err := solver.FromModel(prob)
	if err != nil {
		return nil, solver.Metrics{}, err
	}
	if req.Objectives != nil {
		b.Problem.Objectives = req.Objectives
	}
	cfg := solver.Config{
		TimeBudget:     time.Duration(req.TimeBudgetMs) * time.Millisecond,
		MaxGenerations: req.MaxGenerations,
		Seed:           req.Seed,
		InitTemp:       req.InitTemp,
		Cooling:        req.Cooling,
		Progress: func(generation int, bestCost float64) {
			s.Broker.Publish(solutionID, SSEEvent{Type: "solve.progress", Data: map[string]any{
				"solutionId": solutionID,
				"generation": generation,
				"bestCost":   bestCost,
				"ts":         time.Now().UTC().Format(time.RFC3339),
			}})
		},
	}
	start := time.Now()
	raw, m := solver.Solve(ctx, b.Problem, cfg)
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	sol, err := b.ToModel(raw, m)
	if err != nil {
		return nil, m, err
	}
	return sol, m, nil
}
