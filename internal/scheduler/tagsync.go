package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sixarms/sixarms/internal/store"
)

// syncAllTags syncs tags for every project in the slice, skipping non-repos
// and logging per-project failures. Returns total new tags and milestones.
func (s *Scheduler) syncAllTags(ctx context.Context, projects []store.Project, autoMilestones bool) (int, int) {
	var tagsSynced, milestonesCreated int

	for _, project := range projects {
		if !s.scanner.IsRepo(project.Path) {
			continue
		}
		newTags, newMilestones, err := s.syncProjectTags(ctx, project, autoMilestones)
		if err != nil {
			log.Printf("sync tags for %s: %v", project.Name, err)
			continue
		}
		tagsSynced += newTags
		milestonesCreated += newMilestones
	}

	if tagsSynced > 0 || milestonesCreated > 0 {
		log.Printf("tag sync: %d new tags, %d milestones created", tagsSynced, milestonesCreated)
	}
	if s.events != nil {
		s.events.TagsSynced(tagsSynced, milestonesCreated)
	}
	return tagsSynced, milestonesCreated
}

// syncProjectTags lists a project's tags and upserts each into the store.
// For each tag the upsert reports as new, and when auto-creation is enabled,
// a completed tag-sourced milestone is created unless one already references
// the tag. The exists check keeps repeated syncs idempotent: N sync passes
// over M tags yield exactly M tag-sourced milestones.
func (s *Scheduler) syncProjectTags(ctx context.Context, project store.Project, autoMilestones bool) (int, int, error) {
	tctx, cancel := context.WithTimeout(ctx, projectTimeout)
	defer cancel()

	tags, err := s.scanner.ListTags(tctx, project.Path)
	if err != nil {
		return 0, 0, err
	}

	var newTags, milestonesCreated int

	for _, tag := range tags {
		cached := store.CachedGitTag{
			ID:          uuid.NewString(),
			ProjectID:   project.ID,
			Name:        tag.Name,
			CommitHash:  tag.CommitHash,
			Date:        tag.Date,
			Message:     tag.Message,
			FirstSeenAt: time.Now().UTC(),
		}

		isNew, err := s.store.UpsertGitTag(cached)
		if err != nil {
			return newTags, milestonesCreated, err
		}
		if !isNew {
			continue
		}
		newTags++

		if !autoMilestones {
			continue
		}

		exists, err := s.store.MilestoneExistsForTag(project.ID, tag.Name)
		if err != nil {
			return newTags, milestonesCreated, err
		}
		if exists {
			continue
		}

		now := time.Now().UTC()
		milestone := store.Milestone{
			ID:          uuid.NewString(),
			ProjectID:   project.ID,
			Title:       "Release " + tag.Name,
			Description: tag.Message,
			Version:     tag.Name,
			GitTag:      tag.Name,
			Status:      store.MilestoneCompleted,
			Source:      store.SourceTag,
			CompletedAt: &now,
			CreatedAt:   now,
		}
		if err := s.store.CreateMilestone(milestone); err != nil {
			log.Printf("create milestone for tag %s: %v", tag.Name, err)
			continue
		}
		milestonesCreated++
		log.Printf("auto-created milestone for tag %s", tag.Name)
	}

	return newTags, milestonesCreated, nil
}
