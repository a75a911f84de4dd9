package store

import (
	"context"
	"testing"
	"time"

	"vrpsolve/internal/model"
)

func testProblem() *model.Problem {
	return &model.Problem{
		Plan: model.Plan{Jobs: []model.Job{{ID: "job1", Deliveries: []model.Task{{
			Places: []model.Place{{Location: model.Location{Lat: 1, Lng: 2}, Duration: 60}},
			Demand: []int{1},
		}}}}},
		Fleet: model.Fleet{Vehicles: []model.VehicleType{{
			TypeID: "vehicle", VehicleIDs: []string{"vehicle_1"},
			Shifts:   []model.Shift{{Start: model.ShiftStart{Location: model.Location{Lat: 0, Lng: 0}}}},
			Capacity: []int{5},
		}}},
	}
}

func TestProblemLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	rec, err := m.CreateProblem(ctx, "t1", "berlin", testProblem())
	if err != nil {
		t.Fatalf("CreateProblem: %v", err)
	}
	if rec.Jobs != 1 || rec.Vehicles != 1 {
		t.Fatalf("summary counts: %+v", rec)
	}
	got, err := m.GetProblem(ctx, "t1", rec.ID)
	if err != nil || got.Problem == nil {
		t.Fatalf("GetProblem: %v %+v", err, got)
	}
	if _, err := m.GetProblem(ctx, "t2", rec.ID); err != ErrNotFound {
		t.Fatalf("cross-tenant get: %v", err)
	}
	items, next, err := m.ListProblems(ctx, "t1", "", 10)
	if err != nil || len(items) != 1 || next != "" {
		t.Fatalf("ListProblems: %v items=%d next=%q", err, len(items), next)
	}
	if items[0].Problem != nil {
		t.Fatal("list must return summaries without payload")
	}
}

func TestSolutionLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	prob, _ := m.CreateProblem(ctx, "t1", "", testProblem())
	sol, err := m.CreateSolution(ctx, "t1", prob.ID)
	if err != nil {
		t.Fatalf("CreateSolution: %v", err)
	}
	if sol.Status != "pending" {
		t.Fatalf("status: %s", sol.Status)
	}
	if _, err := m.CreateSolution(ctx, "t1", "missing"); err != ErrNotFound {
		t.Fatalf("missing problem: %v", err)
	}
	if err := m.SetSolutionStatus(ctx, sol.ID, "running", ""); err != nil {
		t.Fatalf("SetSolutionStatus: %v", err)
	}
	if err := m.CompleteSolution(ctx, sol.ID, &model.Solution{}); err != nil {
		t.Fatalf("CompleteSolution: %v", err)
	}
	got, err := m.GetSolution(ctx, "t1", sol.ID)
	if err != nil || got.Status != "completed" || got.Solution == nil {
		t.Fatalf("GetSolution: %v %+v", err, got)
	}
	items, _, err := m.ListSolutions(ctx, "t1", prob.ID, "", 10)
	if err != nil || len(items) != 1 {
		t.Fatalf("ListSolutions: %v n=%d", err, len(items))
	}
	if items[0].Solution != nil {
		t.Fatal("list must not include full solutions")
	}
}

func TestSubscriptionsAndEventMatch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, _ = m.CreateSubscription(ctx, model.SubscriptionRequest{TenantID: "t1", URL: "https://a", Events: []string{"solution.completed"}, Secret: "s"})
	_, _ = m.CreateSubscription(ctx, model.SubscriptionRequest{TenantID: "t1", URL: "https://b", Events: []string{"*"}})
	subs, err := m.GetSubscriptionsForEvent(ctx, "t1", "solution.completed")
	if err != nil || len(subs) != 2 {
		t.Fatalf("event match: %v n=%d", err, len(subs))
	}
	subs, _ = m.GetSubscriptionsForEvent(ctx, "t1", "solution.failed")
	if len(subs) != 1 || subs[0].URL != "https://b" {
		t.Fatalf("wildcard only: %+v", subs)
	}
	listed, _, _ := m.ListSubscriptions(ctx, "t1", "", 10)
	for _, s := range listed {
		if s.Secret != "" {
			t.Fatal("secrets must not be listed")
		}
	}
	if err := m.DeleteSubscription(ctx, "t1", listed[0].ID); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}
	if err := m.DeleteSubscription(ctx, "t1", "absent"); err != ErrNotFound {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestWebhookQueue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id, err := m.EnqueueWebhook(ctx, "t1", "sub1", "solution.completed", "https://x", "sec", []byte(`{}`))
	if err != nil {
		t.Fatalf("EnqueueWebhook: %v", err)
	}
	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	if err != nil || len(due) != 1 || due[0].ID != id {
		t.Fatalf("FetchDue: %v %+v", err, due)
	}
	next := time.Now().Add(time.Hour)
	if err := m.MarkWebhookDelivery(ctx, id, false, &next, "boom", 500, 12); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 0 {
		t.Fatal("delivery should be backed off")
	}
	if err := m.FailWebhookDelivery(ctx, id, "gave up", 500, 10); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	items, _ := m.ListWebhookDeliveries(ctx, "t1", "failed", 10)
	if len(items) != 1 || items[0]["attempts"].(int) != 2 {
		t.Fatalf("list failed: %+v", items)
	}
}

func TestPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = m.CreateProblem(ctx, "t1", "", testProblem())
	}
	first, next, err := m.ListProblems(ctx, "t1", "", 2)
	if err != nil || len(first) != 2 || next == "" {
		t.Fatalf("page 1: %v n=%d next=%q", err, len(first), next)
	}
	second, _, err := m.ListProblems(ctx, "t1", next, 2)
	if err != nil || len(second) != 2 {
		t.Fatalf("page 2: %v n=%d", err, len(second))
	}
	if first[1].ID == second[0].ID {
		t.Fatal("pages overlap")
	}
}

func TestListSolutionsFilterPaginates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	probA, _ := m.CreateProblem(ctx, "t1", "", testProblem())
	probB, _ := m.CreateProblem(ctx, "t1", "", testProblem())
	for i := 0; i < 5; i++ {
		_, _ = m.CreateSolution(ctx, "t1", probA.ID)
	}
	for i := 0; i < 3; i++ {
		_, _ = m.CreateSolution(ctx, "t1", probB.ID)
	}
	// paging the filtered listing must yield all of B's records
	seen := 0
	cursor := ""
	for {
		items, next, err := m.ListSolutions(ctx, "t1", probB.ID, cursor, 2)
		if err != nil {
			t.Fatalf("ListSolutions: %v", err)
		}
		for _, it := range items {
			if it.ProblemID != probB.ID {
				t.Fatalf("wrong problem in filtered page: %+v", it)
			}
		}
		seen += len(items)
		if next == "" {
			break
		}
		cursor = next
	}
	if seen != 3 {
		t.Fatalf("filtered paging: got %d records, want 3", seen)
	}
}
