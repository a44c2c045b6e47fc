package store

import (
	"testing"
	"time"
)

func TestMilestoneExistsForTag(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateProject(testProject("p1", "one", "/repos/one")); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	exists, err := s.MilestoneExistsForTag("p1", "v1.0.0")
	if err != nil {
		t.Fatalf("MilestoneExistsForTag: %v", err)
	}
	if exists {
		t.Error("exists before creation")
	}

	if err := s.CreateMilestone(Milestone{
		ID: "m1", ProjectID: "p1", Title: "Release v1.0.0",
		GitTag: "v1.0.0", Status: MilestoneCompleted, Source: SourceTag,
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateMilestone: %v", err)
	}

	exists, err = s.MilestoneExistsForTag("p1", "v1.0.0")
	if err != nil {
		t.Fatalf("MilestoneExistsForTag: %v", err)
	}
	if !exists {
		t.Error("not found after creation")
	}

	// A different project's identically-named tag is independent.
	exists, _ = s.MilestoneExistsForTag("p2", "v1.0.0")
	if exists {
		t.Error("tag milestone leaked across projects")
	}
}

func TestUpdateMilestoneStatus(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateProject(testProject("p1", "one", "/repos/one")); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if err := s.CreateMilestone(Milestone{
		ID: "m1", ProjectID: "p1", Title: "ship it",
		Status: MilestonePlanned, Source: SourceManual, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateMilestone: %v", err)
	}

	if err := s.UpdateMilestoneStatus("m1", MilestoneCompleted); err != nil {
		t.Fatalf("UpdateMilestoneStatus: %v", err)
	}

	milestones, err := s.Milestones("p1")
	if err != nil {
		t.Fatalf("Milestones: %v", err)
	}
	if len(milestones) != 1 {
		t.Fatalf("expected 1 milestone, got %d", len(milestones))
	}
	m := milestones[0]
	if m.Status != MilestoneCompleted {
		t.Errorf("status = %q, want completed", m.Status)
	}
	if m.CompletedAt == nil {
		t.Error("completed_at not stamped")
	}

	// Moving back to planned clears completed_at.
	if err := s.UpdateMilestoneStatus("m1", MilestonePlanned); err != nil {
		t.Fatalf("UpdateMilestoneStatus: %v", err)
	}
	milestones, _ = s.Milestones("p1")
	if milestones[0].CompletedAt != nil {
		t.Error("completed_at not cleared")
	}
}
