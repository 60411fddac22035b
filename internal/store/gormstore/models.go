package gormstore

import (
	"time"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

type employeeModel struct {
	ID             string    `gorm:"primaryKey;size:64"`
	PersonalNumber string    `gorm:"size:32"`
	Name           string    `gorm:"size:255"`
	UpdatedAt      time.Time
}

func (employeeModel) TableName() string {
	return "employees"
}

type deviationModel struct {
	ID         uint         `gorm:"primaryKey"`
	EmployeeID string       `gorm:"size:64;not null;index"`
	Date       string       `gorm:"size:32;index"`
	StartTime  string       `gorm:"size:16"`
	EndTime    string       `gorm:"size:16"`
	TimeCode   string       `gorm:"size:64"`
	Comment    string       `gorm:"type:text"`
	Status     types.Status `gorm:"size:16;not null;default:draft;index"`
	UpdatedAt  time.Time
}

func (deviationModel) TableName() string {
	return "deviations"
}

type leaveModel struct {
	ID         uint             `gorm:"primaryKey"`
	EmployeeID string           `gorm:"size:64;not null;index"`
	StartDate  string           `gorm:"size:32"`
	EndDate    string           `gorm:"size:32"`
	LeaveType  string           `gorm:"size:64"`
	Scope      types.LeaveScope `gorm:"size:16;not null;default:full_day"`
	StartTime  string           `gorm:"size:16"`
	EndTime    string           `gorm:"size:16"`
	Comment    string           `gorm:"type:text"`
	Status     types.Status     `gorm:"size:16;not null;default:draft;index"`
	UpdatedAt  time.Time
}

func (leaveModel) TableName() string {
	return "leave_requests"
}

type scheduleModel struct {
	ID         uint   `gorm:"primaryKey"`
	EmployeeID string `gorm:"size:64;not null;index"`
	Date       string `gorm:"size:32;index"`
	StartTime  string `gorm:"size:16"`
	EndTime    string `gorm:"size:16"`
	BreakStart string `gorm:"size:16"`
	BreakEnd   string `gorm:"size:16"`
	UpdatedAt  time.Time
}

func (scheduleModel) TableName() string {
	return "schedule_entries"
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployee(m employeeModel) types.Employee {
	return types.Employee{ID: m.ID, PersonalNumber: m.PersonalNumber, Name: m.Name}
}

func fromEmployee(e types.Employee) employeeModel {
	return employeeModel{ID: e.ID, PersonalNumber: e.PersonalNumber, Name: e.Name}
}

func toDeviation(m deviationModel) types.Deviation {
	return types.Deviation{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		Date:       m.Date,
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
		TimeCode:   m.TimeCode,
		Comment:    m.Comment,
		Status:     m.Status,
	}
}

func fromDeviation(d types.Deviation) deviationModel {
	return deviationModel{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		Date:       d.Date,
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		TimeCode:   d.TimeCode,
		Comment:    d.Comment,
		Status:     d.Status,
	}
}

func toLeave(m leaveModel) types.LeaveRequest {
	return types.LeaveRequest{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		LeaveType:  m.LeaveType,
		Scope:      m.Scope,
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
		Comment:    m.Comment,
		Status:     m.Status,
	}
}

func fromLeave(l types.LeaveRequest) leaveModel {
	scope := l.Scope
	if scope == "" {
		scope = types.ScopeFullDay
	}
	return leaveModel{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
		LeaveType:  l.LeaveType,
		Scope:      scope,
		StartTime:  l.StartTime,
		EndTime:    l.EndTime,
		Comment:    l.Comment,
		Status:     l.Status,
	}
}

func toSchedule(m scheduleModel) types.ScheduleEntry {
	return types.ScheduleEntry{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		Date:       m.Date,
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
		BreakStart: m.BreakStart,
		BreakEnd:   m.BreakEnd,
	}
}

func fromSchedule(s types.ScheduleEntry) scheduleModel {
	return scheduleModel{
		ID:         s.ID,
		EmployeeID: s.EmployeeID,
		Date:       s.Date,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		BreakStart: s.BreakStart,
		BreakEnd:   s.BreakEnd,
	}
}
