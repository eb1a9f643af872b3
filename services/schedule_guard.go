package services

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// SlotGuard serializes schedule writes per participant and date. The
// conflict checks read existing rows and then insert, so two requests
// booking the same teacher or student for the same day must not run that
// section concurrently. Keys are acquired in sorted order; two requests
// sharing any participant+date therefore always serialize, and requests
// holding overlapping key sets cannot deadlock.
//
// The schedules table's unique index on (teacher, date, start, end) is
// the second line of defense for multi-instance deployments.
type SlotGuard struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

var scheduleGuard = &SlotGuard{locks: make(map[string]*slotLock)}

// ScheduleGuard returns the process-wide guard.
func ScheduleGuard() *SlotGuard {
	return scheduleGuard
}

// TeacherSlotKey builds the lock key for a teacher on a given date.
func TeacherSlotKey(teacherID uint, date time.Time) string {
	return fmt.Sprintf("teacher:%d:%s", teacherID, date.Format("2006-01-02"))
}

// StudentSlotKey builds the lock key for a student on a given date.
func StudentSlotKey(studentID uint, date time.Time) string {
	return fmt.Sprintf("student:%d:%s", studentID, date.Format("2006-01-02"))
}

// Acquire locks every key and returns a release function. Keys are
// deduplicated and sorted before acquisition.
func (g *SlotGuard) Acquire(keys []string) func() {
	unique := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		unique[k] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for k := range unique {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	held := make([]*slotLock, 0, len(sorted))
	for _, k := range sorted {
		g.mu.Lock()
		l, ok := g.locks[k]
		if !ok {
			l = &slotLock{}
			g.locks[k] = l
		}
		l.refs++
		g.mu.Unlock()

		l.mu.Lock()
		held = append(held, l)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Release in reverse acquisition order
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
		}
		g.mu.Lock()
		for _, k := range sorted {
			if l, ok := g.locks[k]; ok {
				l.refs--
				if l.refs <= 0 {
					delete(g.locks, k)
				}
			}
		}
		g.mu.Unlock()
	}
}
