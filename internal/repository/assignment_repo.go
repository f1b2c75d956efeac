package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/portal-api/internal/models"
)

// AssignmentRepository defines data operations for submitted assignments.
type AssignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Assignment, error)
	ListByCourse(ctx context.Context, course string) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountUngraded(ctx context.Context) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Assignment{}).Preload("Student")
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.baseQuery(ctx).Order("submitted_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, course string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.baseQuery(ctx).
		Where("course = ?", course).
		Order("submitted_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.baseQuery(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).Count(&count).Error
	return count, err
}

func (r *assignmentRepository) CountUngraded(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("grade = '' OR grade IS NULL").
		Count(&count).Error
	return count, err
}
