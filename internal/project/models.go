package project

import (
	"fmt"
	"time"

	"github.com/suPer8Hu/diy-assistant/internal/models"
)

// Column limits for user-supplied values.
const (
	MaxTitleLen    = 255
	MaxQuantityLen = 128
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
)

type MaterialStatus string

const (
	MaterialNeeded   MaterialStatus = "needed"
	MaterialAcquired MaterialStatus = "acquired"
)

func (s Status) Valid() bool         { return s == StatusInProgress || s == StatusCompleted }
func (s StepStatus) Valid() bool     { return s == StepPending || s == StepCompleted }
func (s MaterialStatus) Valid() bool { return s == MaterialNeeded || s == MaterialAcquired }

type Project struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"index;not null" json:"-"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      Status    `gorm:"type:varchar(16);not null;default:in_progress" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User      models.User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Steps     []Step      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Materials []Material  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Project) TableName() string { return "projects" }

type Step struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   uint64     `gorm:"not null;uniqueIndex:uniq_step_project_number,priority:1" json:"-"`
	StepNumber  int        `gorm:"not null;uniqueIndex:uniq_step_project_number,priority:2" json:"step_number"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Status      StepStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
}

func (Step) TableName() string { return "project_steps" }

type Material struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint64         `gorm:"index;not null" json:"-"`
	Name      string         `gorm:"type:text;not null" json:"name"`
	Quantity  *string        `gorm:"type:varchar(128)" json:"quantity"`
	Status    MaterialStatus `gorm:"type:varchar(16);not null;default:needed" json:"status"`
}

func (Material) TableName() string { return "materials" }

type ProjectSummary struct {
	Project
	CompletedSteps int
	TotalSteps     int
}

// Progress renders completed/total, "0/0" for a project without steps.
func (s ProjectSummary) Progress() string {
	return fmt.Sprintf("%d/%d", s.CompletedSteps, s.TotalSteps)
}

type ProjectDetail struct {
	Project
	Steps     []Step
	Materials []Material
}
