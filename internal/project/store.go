package project

import (
	"context"
	"errors"
	"time"

	"github.com/suPer8Hu/diy-assistant/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned for projects that do not exist and for projects
// owned by someone else; callers cannot tell the two apart.
var ErrNotFound = errors.New("project not found")

// ErrUnknownOwner is returned when a project is created for a user id that
// has no users row.
var ErrUnknownOwner = errors.New("project owner does not exist")

// Store is the persistence boundary for projects and their steps and materials.
// Every method is scoped to ownerID.
type Store interface {
	CreateProjectWithPlan(ctx context.Context, p *Project, steps, materials []string) error
	ListProjects(ctx context.Context, ownerID uint64) ([]ProjectSummary, error)
	GetProject(ctx context.Context, ownerID, projectID uint64) (*ProjectDetail, error)
	UpdateProjectStatus(ctx context.Context, ownerID, projectID uint64, status Status) (bool, error)
	UpdateStepStatus(ctx context.Context, ownerID, projectID, stepID uint64, status StepStatus) (bool, error)
	UpdateMaterial(ctx context.Context, ownerID, projectID, materialID uint64, status MaterialStatus, quantity *string) (bool, error)
	DeleteProject(ctx context.Context, ownerID, projectID uint64) (bool, error)
}

// GormStore implements Store for every dialect gorm is opened with.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// CreateProjectWithPlan inserts the project and its children in one transaction.
// Steps are numbered 1..N in slice order.
func (s *GormStore) CreateProjectWithPlan(ctx context.Context, p *Project, steps, materials []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&models.User{}).Where("id = ?", p.UserID).Count(&owners).Error; err != nil {
			return err
		}
		if owners == 0 {
			return ErrUnknownOwner
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}

		if len(steps) > 0 {
			rows := make([]Step, 0, len(steps))
			for i, d := range steps {
				rows = append(rows, Step{
					ProjectID:   p.ID,
					StepNumber:  i + 1,
					Description: d,
					Status:      StepPending,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		if len(materials) > 0 {
			rows := make([]Material, 0, len(materials))
			for _, name := range materials {
				rows = append(rows, Material{
					ProjectID: p.ID,
					Name:      name,
					Status:    MaterialNeeded,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	// the users row can vanish between the check and the insert
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrUnknownOwner
	}
	return err
}

type stepCount struct {
	ProjectID uint64
	Total     int
	Completed int
}

// ListProjects returns the owner's projects, newest first.
func (s *GormStore) ListProjects(ctx context.Context, ownerID uint64) ([]ProjectSummary, error) {
	var projects []Project
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return []ProjectSummary{}, nil
	}

	ids := make([]uint64, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	var counts []stepCount
	if err := s.db.WithContext(ctx).Model(&Step{}).
		Select("project_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed", StepCompleted).
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byProject := make(map[uint64]stepCount, len(counts))
	for _, c := range counts {
		byProject[c.ProjectID] = c
	}

	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		c := byProject[p.ID]
		out = append(out, ProjectSummary{Project: p, CompletedSteps: c.Completed, TotalSteps: c.Total})
	}
	return out, nil
}

func (s *GormStore) GetProject(ctx context.Context, ownerID, projectID uint64) (*ProjectDetail, error) {
	db := s.db.WithContext(ctx)

	var p Project
	if err := db.Where("id = ? AND user_id = ?", projectID, ownerID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	steps := []Step{}
	if err := db.Where("project_id = ?", p.ID).Order("step_number ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	materials := []Material{}
	if err := db.Where("project_id = ?", p.ID).Order("id ASC").Find(&materials).Error; err != nil {
		return nil, err
	}
	return &ProjectDetail{Project: p, Steps: steps, Materials: materials}, nil
}

func (s *GormStore) UpdateProjectStatus(ctx context.Context, ownerID, projectID uint64, status Status) (bool, error) {
	res := s.db.WithContext(ctx).Model(&Project{}).
		Where("id = ? AND user_id = ?", projectID, ownerID).
		Updates(map[string]any{"status": status, "updated_at": s.now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) UpdateStepStatus(ctx context.Context, ownerID, projectID, stepID uint64, status StepStatus) (bool, error) {
	return s.updateChild(ctx, ownerID, projectID, func(tx *gorm.DB, owned *gorm.DB) *gorm.DB {
		return tx.Model(&Step{}).
			Where("id = ? AND project_id = ?", stepID, projectID).
			Where("project_id IN (?)", owned).
			Update("status", status)
	})
}

// UpdateMaterial sets status and, when quantity is non-nil, the quantity.
func (s *GormStore) UpdateMaterial(ctx context.Context, ownerID, projectID, materialID uint64, status MaterialStatus, quantity *string) (bool, error) {
	fields := map[string]any{"status": status}
	if quantity != nil {
		fields["quantity"] = *quantity
	}
	return s.updateChild(ctx, ownerID, projectID, func(tx *gorm.DB, owned *gorm.DB) *gorm.DB {
		return tx.Model(&Material{}).
			Where("id = ? AND project_id = ?", materialID, projectID).
			Where("project_id IN (?)", owned).
			Updates(fields)
	})
}

// updateChild runs a child-row update restricted to projects owned by ownerID
// and bumps the parent's updated_at when a row changed.
func (s *GormStore) updateChild(ctx context.Context, ownerID, projectID uint64, update func(tx *gorm.DB, owned *gorm.DB) *gorm.DB) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&Project{}).Select("id").Where("user_id = ?", ownerID)
		res := update(tx, owned)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&Project{}).
			Where("id = ? AND user_id = ?", projectID, ownerID).
			UpdateColumn("updated_at", s.now()).Error
	})
	return changed, err
}

// DeleteProject removes the project with its steps and materials.
func (s *GormStore) DeleteProject(ctx context.Context, ownerID, projectID uint64) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Project
		if err := tx.Select("id").Where("id = ? AND user_id = ?", projectID, ownerID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&Step{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&Material{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Project{}, p.ID).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
