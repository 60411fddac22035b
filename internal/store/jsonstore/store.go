// Package jsonstore keeps every record in one JSON document on disk. It is
// meant for demos and small single-user setups; writes rewrite the whole file.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ginjaninja78/paxml-exporter/internal/store"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

type document struct {
	Employees  []types.Employee      `json:"employees"`
	Deviations []types.Deviation     `json:"deviations"`
	Leaves     []types.LeaveRequest  `json:"leaves"`
	Schedules  []types.ScheduleEntry `json:"schedules"`
}

// Store implements store.Store on a JSON file.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  document
}

var _ store.Store = (*Store)(nil)

// Open loads path, or starts empty when the file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonstore: read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("jsonstore: decode %s: %w", path, err)
		}
	}
	// Hand-edited files may use any casing for statuses.
	for i := range s.doc.Deviations {
		if status, err := types.ParseStatus(string(s.doc.Deviations[i].Status)); err == nil {
			s.doc.Deviations[i].Status = status
		}
	}
	for i := range s.doc.Leaves {
		if status, err := types.ParseStatus(string(s.doc.Leaves[i].Status)); err == nil {
			s.doc.Leaves[i].Status = status
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	return nil
}

// =============================================================================
// READS
// =============================================================================

func (s *Store) ApprovedDeviations(ctx context.Context, filters store.Filters) ([]types.Deviation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Deviation
	for _, d := range s.doc.Deviations {
		if d.Status == types.StatusApproved && filters.MatchEmployee(d.EmployeeID) && filters.MatchDate(d.Date) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) ApprovedLeaves(ctx context.Context, filters store.Filters) ([]types.LeaveRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.LeaveRequest
	for _, l := range s.doc.Leaves {
		if l.Status == types.StatusApproved && filters.MatchEmployee(l.EmployeeID) && filters.MatchRange(l.StartDate, l.EndDate) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) Employees(ctx context.Context) ([]types.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]types.Employee(nil), s.doc.Employees...), nil
}

func (s *Store) Schedules(ctx context.Context, filters store.Filters) ([]types.ScheduleEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.ScheduleEntry
	for _, e := range s.doc.Schedules {
		if filters.MatchEmployee(e.EmployeeID) && filters.MatchDate(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// WRITES
// =============================================================================

func (s *Store) SaveEmployees(ctx context.Context, employees []types.Employee) error {
	return s.update(ctx, func(doc *document) error {
		for _, employee := range employees {
			if employee.ID == "" {
				return fmt.Errorf("employee without id")
			}
			replaced := false
			for i := range doc.Employees {
				if doc.Employees[i].ID == employee.ID {
					doc.Employees[i] = employee
					replaced = true
					break
				}
			}
			if !replaced {
				doc.Employees = append(doc.Employees, employee)
			}
		}
		sort.SliceStable(doc.Employees, func(i, j int) bool { return doc.Employees[i].ID < doc.Employees[j].ID })
		return nil
	})
}

func (s *Store) SaveDeviations(ctx context.Context, deviations []types.Deviation) error {
	return s.update(ctx, func(doc *document) error {
		for _, deviation := range deviations {
			status, err := store.CheckStatus(types.KindDeviation, deviation.Status)
			if err != nil {
				return fmt.Errorf("deviation %d: %w", deviation.ID, err)
			}
			deviation.Status = status
			if deviation.ID == 0 {
				deviation.ID = nextDeviationID(doc.Deviations)
			}
			if i := indexOf(len(doc.Deviations), func(i int) bool { return doc.Deviations[i].ID == deviation.ID }); i >= 0 {
				if err := store.ReplaceStatus(types.KindDeviation, doc.Deviations[i].Status, status); err != nil {
					return fmt.Errorf("deviation %d: %w", deviation.ID, err)
				}
				doc.Deviations[i] = deviation
			} else {
				doc.Deviations = append(doc.Deviations, deviation)
			}
		}
		return nil
	})
}

func (s *Store) SaveLeaves(ctx context.Context, leaves []types.LeaveRequest) error {
	return s.update(ctx, func(doc *document) error {
		for _, leave := range leaves {
			status, err := store.CheckStatus(types.KindLeave, leave.Status)
			if err != nil {
				return fmt.Errorf("leave %d: %w", leave.ID, err)
			}
			leave.Status = status
			if leave.Scope == "" {
				leave.Scope = types.ScopeFullDay
			}
			if leave.ID == 0 {
				leave.ID = nextLeaveID(doc.Leaves)
			}
			if i := indexOf(len(doc.Leaves), func(i int) bool { return doc.Leaves[i].ID == leave.ID }); i >= 0 {
				if err := store.ReplaceStatus(types.KindLeave, doc.Leaves[i].Status, status); err != nil {
					return fmt.Errorf("leave %d: %w", leave.ID, err)
				}
				doc.Leaves[i] = leave
			} else {
				doc.Leaves = append(doc.Leaves, leave)
			}
		}
		return nil
	})
}

func (s *Store) SaveSchedules(ctx context.Context, schedules []types.ScheduleEntry) error {
	return s.update(ctx, func(doc *document) error {
		for _, entry := range schedules {
			if entry.ID == 0 {
				entry.ID = nextScheduleID(doc.Schedules)
			}
			if i := indexOf(len(doc.Schedules), func(i int) bool { return doc.Schedules[i].ID == entry.ID }); i >= 0 {
				doc.Schedules[i] = entry
			} else {
				doc.Schedules = append(doc.Schedules, entry)
			}
		}
		return nil
	})
}

func (s *Store) UpdateDeviationStatus(ctx context.Context, id uint, to types.Status) error {
	return s.update(ctx, func(doc *document) error {
		i := indexOf(len(doc.Deviations), func(i int) bool { return doc.Deviations[i].ID == id })
		if i < 0 {
			return fmt.Errorf("deviation %d: %w", id, store.ErrNotFound)
		}
		next, err := types.Transition(types.KindDeviation, doc.Deviations[i].Status, to)
		if err != nil {
			return err
		}
		doc.Deviations[i].Status = next
		return nil
	})
}

func (s *Store) UpdateLeaveStatus(ctx context.Context, id uint, to types.Status) error {
	return s.update(ctx, func(doc *document) error {
		i := indexOf(len(doc.Leaves), func(i int) bool { return doc.Leaves[i].ID == id })
		if i < 0 {
			return fmt.Errorf("leave %d: %w", id, store.ErrNotFound)
		}
		next, err := types.Transition(types.KindLeave, doc.Leaves[i].Status, to)
		if err != nil {
			return err
		}
		doc.Leaves[i].Status = next
		return nil
	})
}

// update applies fn to a copy of the document and persists it. The in-memory
// state only changes when both fn and the write succeed.
func (s *Store) update(ctx context.Context, fn func(doc *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := document{
		Employees:  append([]types.Employee(nil), s.doc.Employees...),
		Deviations: append([]types.Deviation(nil), s.doc.Deviations...),
		Leaves:     append([]types.LeaveRequest(nil), s.doc.Leaves...),
		Schedules:  append([]types.ScheduleEntry(nil), s.doc.Schedules...),
	}
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// persist writes to a temporary file and renames it over the target.
func (s *Store) persist(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonstore: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".paxml-*.json")
	if err != nil {
		return fmt.Errorf("jsonstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonstore: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("jsonstore: replace %s: %w", s.path, err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func indexOf(n int, match func(i int) bool) int {
	for i := 0; i < n; i++ {
		if match(i) {
			return i
		}
	}
	return -1
}

func nextDeviationID(rows []types.Deviation) uint {
	var highest uint
	for _, row := range rows {
		if row.ID > highest {
			highest = row.ID
		}
	}
	return highest + 1
}

func nextLeaveID(rows []types.LeaveRequest) uint {
	var highest uint
	for _, row := range rows {
		if row.ID > highest {
			highest = row.ID
		}
	}
	return highest + 1
}

func nextScheduleID(rows []types.ScheduleEntry) uint {
	var highest uint
	for _, row := range rows {
		if row.ID > highest {
			highest = row.ID
		}
	}
	return highest + 1
}
