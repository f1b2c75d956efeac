package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campushub/portal-api/internal/models"
)

// AttendanceRepository persists attendance records keyed by the
// (student_id, class_name, date) triple.
type AttendanceRepository interface {
	// Upsert inserts the record or, when the composite key already exists,
	// overwrites its status. The write is a single atomic statement.
	Upsert(ctx context.Context, record *models.Attendance) error
	// UpsertBatch applies every upsert inside one transaction; any failure
	// rolls the whole batch back.
	UpsertBatch(ctx context.Context, records []*models.Attendance) error
	FindByKey(ctx context.Context, studentID uint, className string, date time.Time) (models.Attendance, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error)
	ListByClass(ctx context.Context, className string) ([]models.Attendance, error)
	ListByClassAndDate(ctx context.Context, className string, date time.Time) ([]models.Attendance, error)
	ListByStudentInRange(ctx context.Context, studentID uint, start, end time.Time) ([]models.Attendance, error)
	// ListForReport returns records within [start, end], optionally filtered
	// by class, ordered most-recent-date-first.
	ListForReport(ctx context.Context, className string, start, end time.Time) ([]models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

var attendanceConflictKey = []clause.Column{
	{Name: "student_id"},
	{Name: "class_name"},
	{Name: "date"},
}

func upsertAttendance(db *gorm.DB, record *models.Attendance) error {
	return db.Clauses(clause.OnConflict{
		Columns:   attendanceConflictKey,
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(record).Error
}

func (r *attendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	return upsertAttendance(r.db.WithContext(ctx), record)
}

func (r *attendanceRepository) UpsertBatch(ctx context.Context, records []*models.Attendance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if err := upsertAttendance(tx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *attendanceRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Attendance{}).Preload("Student")
}

func (r *attendanceRepository) FindByKey(ctx context.Context, studentID uint, className string, date time.Time) (models.Attendance, error) {
	var record models.Attendance
	if err := r.baseQuery(ctx).
		Where("student_id = ? AND class_name = ? AND date = ?", studentID, className, date).
		First(&record).Error; err != nil {
		return models.Attendance{}, err
	}
	return record, nil
}

func (r *attendanceRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) ListByClass(ctx context.Context, className string) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.baseQuery(ctx).
		Where("class_name = ?", className).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) ListByClassAndDate(ctx context.Context, className string, date time.Time) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.baseQuery(ctx).
		Where("class_name = ? AND date = ?", className, date).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) ListByStudentInRange(ctx context.Context, studentID uint, start, end time.Time) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.baseQuery(ctx).
		Where("student_id = ? AND date BETWEEN ? AND ?", studentID, start, end).
		Order("date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) ListForReport(ctx context.Context, className string, start, end time.Time) ([]models.Attendance, error) {
	query := r.baseQuery(ctx).Where("date BETWEEN ? AND ?", start, end)
	if className != "" {
		query = query.Where("class_name = ?", className)
	}

	var records []models.Attendance
	if err := query.Order("date DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
