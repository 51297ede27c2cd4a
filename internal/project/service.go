package project

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/suPer8Hu/diy-assistant/internal/ai"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
)

// Planner produces the initial steps and materials for a new project.
type Planner interface {
	GenerateSteps(ctx context.Context, title, description string) ([]string, error)
	GenerateMaterials(ctx context.Context, title, description string) ([]string, error)
}

type Service struct {
	store   Store
	planner Planner
}

func NewService(store Store, planner Planner) *Service {
	return &Service{store: store, planner: planner}
}

// CreateProject stores a new in-progress project together with its generated
// plan. Plan generation is best effort: on failure the project is created
// without steps or materials.
func (s *Service) CreateProject(ctx context.Context, ownerID uint64, title, description string) (uint64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, fmt.Errorf("title required: %w", common.ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return 0, fmt.Errorf("title longer than %d characters: %w", MaxTitleLen, common.ErrValidation)
	}
	description = strings.TrimSpace(description)

	steps, materials := s.generatePlan(ctx, title, description)

	p := &Project{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      StatusInProgress,
	}
	if err := s.store.CreateProjectWithPlan(ctx, p, steps, materials); err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}

	logging.FromContext(ctx).Info("project created",
		"project_id", p.ID,
		"user_id", ownerID,
		"steps", len(steps),
		"materials", len(materials),
	)
	return p.ID, nil
}

func (s *Service) generatePlan(ctx context.Context, title, description string) (steps, materials []string) {
	if s.planner == nil {
		return nil, nil
	}
	log := logging.FromContext(ctx)

	steps, err := s.planner.GenerateSteps(ctx, title, description)
	if err != nil {
		log.Warn("step generation failed", "kind", ai.KindOf(err), "err", err)
		steps = nil
	}
	materials, err = s.planner.GenerateMaterials(ctx, title, description)
	if err != nil {
		log.Warn("material generation failed", "kind", ai.KindOf(err), "err", err)
		materials = nil
	}
	return steps, materials
}

func (s *Service) ListProjects(ctx context.Context, ownerID uint64) ([]ProjectSummary, error) {
	return s.store.ListProjects(ctx, ownerID)
}

func (s *Service) GetProjectDetail(ctx context.Context, ownerID, projectID uint64) (*ProjectDetail, error) {
	return s.store.GetProject(ctx, ownerID, projectID)
}

// UpdateStepStatus is a no-op when the step is not part of a project owned by ownerID.
func (s *Service) UpdateStepStatus(ctx context.Context, ownerID, projectID, stepID uint64, status StepStatus) error {
	if !status.Valid() {
		return fmt.Errorf("step status %q: %w", status, common.ErrValidation)
	}
	changed, err := s.store.UpdateStepStatus(ctx, ownerID, projectID, stepID, status)
	if err != nil {
		return err
	}
	if !changed {
		logging.FromContext(ctx).Debug("step update matched nothing",
			"user_id", ownerID, "project_id", projectID, "step_id", stepID)
	}
	return nil
}

// UpdateMaterialStatus is a no-op when the material is not part of a project
// owned by ownerID. A nil quantity leaves the stored quantity untouched.
func (s *Service) UpdateMaterialStatus(ctx context.Context, ownerID, projectID, materialID uint64, status MaterialStatus, quantity *string) error {
	if !status.Valid() {
		return fmt.Errorf("material status %q: %w", status, common.ErrValidation)
	}
	if quantity != nil {
		q := strings.TrimSpace(*quantity)
		if utf8.RuneCountInString(q) > MaxQuantityLen {
			return fmt.Errorf("quantity longer than %d characters: %w", MaxQuantityLen, common.ErrValidation)
		}
		quantity = &q
	}
	changed, err := s.store.UpdateMaterial(ctx, ownerID, projectID, materialID, status, quantity)
	if err != nil {
		return err
	}
	if !changed {
		logging.FromContext(ctx).Debug("material update matched nothing",
			"user_id", ownerID, "project_id", projectID, "material_id", materialID)
	}
	return nil
}

func (s *Service) UpdateProjectStatus(ctx context.Context, ownerID, projectID uint64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("project status %q: %w", status, common.ErrValidation)
	}
	changed, err := s.store.UpdateProjectStatus(ctx, ownerID, projectID, status)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteProject(ctx context.Context, ownerID, projectID uint64) error {
	deleted, err := s.store.DeleteProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
