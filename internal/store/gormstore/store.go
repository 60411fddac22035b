// Package gormstore is the relational backend of the exporter. It runs on
// PostgreSQL in production and on SQLite for local use and tests.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ginjaninja78/paxml-exporter/internal/config"
	"github.com/ginjaninja78/paxml-exporter/internal/store"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// Store implements store.Store on top of gorm.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to the configured database and migrates the schema.
//
// PARAMETERS:
//   - cfg: Driver must be "postgres" or "sqlite"; DSN is passed to the driver.
//   - logger: Receives connection messages. SQL is only logged at debug level.
func Open(cfg config.DatabaseConfig, logger *logrus.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("gormstore: unsupported driver %q", cfg.Driver)
	}

	level := gormlogger.Silent
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows one writer; an in-memory database also lives on a
		// single connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s, err := New(db, logger)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"driver": cfg.Driver}).Info("Database connected")
	return s, nil
}

// New wraps an open connection and migrates the schema.
func New(db *gorm.DB, logger *logrus.Logger) (*Store, error) {
	if err := db.AutoMigrate(&employeeModel{}, &deviationModel{}, &leaveModel{}, &scheduleModel{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrate: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// =============================================================================
// READS
// =============================================================================

func (s *Store) ApprovedDeviations(ctx context.Context, filters store.Filters) ([]types.Deviation, error) {
	var rows []deviationModel
	query := s.db.WithContext(ctx).Where("status = ?", types.StatusApproved)
	if ids := filters.EmployeeList(); len(ids) > 0 {
		query = query.Where("employee_id IN ?", ids)
	}
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	deviations := make([]types.Deviation, 0, len(rows))
	for _, row := range rows {
		if filters.MatchDate(row.Date) {
			deviations = append(deviations, toDeviation(row))
		}
	}
	return deviations, nil
}

func (s *Store) ApprovedLeaves(ctx context.Context, filters store.Filters) ([]types.LeaveRequest, error) {
	var rows []leaveModel
	query := s.db.WithContext(ctx).Where("status = ?", types.StatusApproved)
	if ids := filters.EmployeeList(); len(ids) > 0 {
		query = query.Where("employee_id IN ?", ids)
	}
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	leaves := make([]types.LeaveRequest, 0, len(rows))
	for _, row := range rows {
		if filters.MatchRange(row.StartDate, row.EndDate) {
			leaves = append(leaves, toLeave(row))
		}
	}
	return leaves, nil
}

func (s *Store) Employees(ctx context.Context) ([]types.Employee, error) {
	var rows []employeeModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	employees := make([]types.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, toEmployee(row))
	}
	return employees, nil
}

func (s *Store) Schedules(ctx context.Context, filters store.Filters) ([]types.ScheduleEntry, error) {
	var rows []scheduleModel
	query := s.db.WithContext(ctx)
	if ids := filters.EmployeeList(); len(ids) > 0 {
		query = query.Where("employee_id IN ?", ids)
	}
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]types.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		if filters.MatchDate(row.Date) {
			entries = append(entries, toSchedule(row))
		}
	}
	return entries, nil
}

// =============================================================================
// WRITES
// =============================================================================

// SaveEmployees inserts or replaces employees by id.
func (s *Store) SaveEmployees(ctx context.Context, employees []types.Employee) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, employee := range employees {
			if employee.ID == "" {
				return fmt.Errorf("employee without id")
			}
			row := fromEmployee(employee)
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveDeviations inserts new deviations (id 0) and replaces existing ones.
func (s *Store) SaveDeviations(ctx context.Context, deviations []types.Deviation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, deviation := range deviations {
			status, err := store.CheckStatus(types.KindDeviation, deviation.Status)
			if err != nil {
				return fmt.Errorf("deviation %d: %w", deviation.ID, err)
			}
			deviation.Status = status
			if err := checkReplace(tx, &deviationModel{}, types.KindDeviation, deviation.ID, status); err != nil {
				return fmt.Errorf("deviation %d: %w", deviation.ID, err)
			}
			row := fromDeviation(deviation)
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveLeaves inserts new leave requests (id 0) and replaces existing ones.
func (s *Store) SaveLeaves(ctx context.Context, leaves []types.LeaveRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, leave := range leaves {
			status, err := store.CheckStatus(types.KindLeave, leave.Status)
			if err != nil {
				return fmt.Errorf("leave %d: %w", leave.ID, err)
			}
			leave.Status = status
			if err := checkReplace(tx, &leaveModel{}, types.KindLeave, leave.ID, status); err != nil {
				return fmt.Errorf("leave %d: %w", leave.ID, err)
			}
			row := fromLeave(leave)
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveSchedules inserts new schedule entries (id 0) and replaces existing ones.
func (s *Store) SaveSchedules(ctx context.Context, schedules []types.ScheduleEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range schedules {
			row := fromSchedule(entry)
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) UpdateDeviationStatus(ctx context.Context, id uint, to types.Status) error {
	return s.transition(ctx, &deviationModel{}, types.KindDeviation, id, to)
}

func (s *Store) UpdateLeaveStatus(ctx context.Context, id uint, to types.Status) error {
	return s.transition(ctx, &leaveModel{}, types.KindLeave, id, to)
}

type statusRow struct {
	Status types.Status
}

// checkReplace applies the lifecycle to a save that overwrites an existing
// row. New rows (id 0 or unknown id) are not checked.
func checkReplace(tx *gorm.DB, model any, kind types.RecordKind, id uint, incoming types.Status) error {
	if id == 0 {
		return nil
	}
	var current statusRow
	err := tx.Model(model).Select("status").Where("id = ?", id).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return store.ReplaceStatus(kind, current.Status, incoming)
}

// transition reads the current status and writes the new one in a single
// transaction, so two concurrent approvals cannot both succeed from pending.
func (s *Store) transition(ctx context.Context, model any, kind types.RecordKind, id uint, to types.Status) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current statusRow
		err := tx.Model(model).Select("status").Where("id = ?", id).Take(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s %d: %w", kind, id, store.ErrNotFound)
		}
		if err != nil {
			return err
		}

		next, err := types.Transition(kind, current.Status, to)
		if err != nil {
			return err
		}

		result := tx.Model(model).Where("id = ? AND status = ?", id, current.Status).Update("status", next)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s %d changed concurrently", types.ErrInvalidTransition, kind, id)
		}

		s.logger.WithFields(logrus.Fields{
			"kind": kind,
			"id":   id,
			"from": current.Status,
			"to":   next,
		}).Info("Status changed")
		return nil
	})
}
