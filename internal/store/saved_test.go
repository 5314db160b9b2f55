package store

import (
	"context"
	"errors"
	"testing"

	"hirely/internal/database"
)

func TestToggleSaveRoundTrip(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	_, _ = seedJobBoard(t, deps)
	client := candidateClient(deps, 5)

	jobs, err := client.ListJobs(context.Background(), JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	target := jobs[0]

	saved, err := client.ToggleSave(context.Background(), target.ID, false)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved {
		t.Fatal("save reported saved=false")
	}

	list, err := client.ListSavedJobs(context.Background())
	if err != nil {
		t.Fatalf("ListSavedJobs: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d saved jobs, want 1", len(list))
	}
	if list[0].Job == nil || list[0].Job.Title != target.Title {
		t.Errorf("saved job not expanded with the full job row")
	}
	if list[0].Job.Company == nil || list[0].Job.Company.Name == "" {
		t.Errorf("saved job missing the reduced company projection")
	}

	saved, err = client.ToggleSave(context.Background(), target.ID, true)
	if err != nil {
		t.Fatalf("unsave: %v", err)
	}
	if saved {
		t.Fatal("unsave reported saved=true")
	}

	list, err = client.ListSavedJobs(context.Background())
	if err != nil {
		t.Fatalf("ListSavedJobs: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("got %d saved jobs after unsave, want 0", len(list))
	}
}

// 删除不存在的收藏不算错误，结果状态仍是未收藏。
func TestToggleSaveUnsaveMissingRowIsNoop(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	job := seedJob(t, deps.DB, database.Job{Title: "SRE", RecruiterID: 1})

	saved, err := candidateClient(deps, 5).ToggleSave(context.Background(), job.ID, true)
	if err != nil {
		t.Fatalf("unsave missing row: %v", err)
	}
	if saved {
		t.Fatal("saved = true, want false")
	}
}

func TestSavedJobsScopedPerUser(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	job := seedJob(t, deps.DB, database.Job{Title: "SRE", RecruiterID: 1})

	if _, err := candidateClient(deps, 5).ToggleSave(context.Background(), job.ID, false); err != nil {
		t.Fatalf("save as user 5: %v", err)
	}

	other, err := candidateClient(deps, 6).ListSavedJobs(context.Background())
	if err != nil {
		t.Fatalf("ListSavedJobs as user 6: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("user 6 sees %d saved jobs, want 0", len(other))
	}
}

func TestSavedJobsRequireAuth(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	client := Anonymous(deps)

	if _, err := client.ListSavedJobs(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("list: got %v, want ErrUnauthenticated", err)
	}
	if _, err := client.ToggleSave(context.Background(), 1, false); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("toggle: got %v, want ErrUnauthenticated", err)
	}
}
