// Package inmemdb backs the core repositories with in-memory tables. It is
// used by tests and local development where a postgres instance is overkill.
package inmemdb

import (
	"sync"

	"github.com/okapitech/ratiba/core/attendance"
	"github.com/okapitech/ratiba/core/curriculum"
	"github.com/okapitech/ratiba/core/document"
	"github.com/okapitech/ratiba/core/lesson"
	"github.com/okapitech/ratiba/core/provider"
	"github.com/okapitech/ratiba/core/schedule"
)

type (
	DB struct {
		provider   *providerTable
		student    *studentTable
		session    *sessionTable
		tracking   *trackingTable
		lesson     *lessonTable
		attendance *attendanceTable
		document   *documentTable
	}

	providerTable struct {
		table map[string]*provider.Provider
		mutex sync.RWMutex
	}

	studentTable struct {
		table map[string]*schedule.Student
		mutex sync.RWMutex
	}

	sessionTable struct {
		table map[string]*schedule.Session
		mutex sync.RWMutex
	}

	trackingTable struct {
		table map[string]*curriculum.Tracking
		mutex sync.RWMutex
	}

	lessonTable struct {
		table map[string]*lesson.Lesson
		mutex sync.RWMutex
	}

	attendanceTable struct {
		table map[string]*attendance.Record
		mutex sync.RWMutex
	}

	documentTable struct {
		table map[string]*document.Document
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		provider:   &providerTable{table: make(map[string]*provider.Provider)},
		student:    &studentTable{table: make(map[string]*schedule.Student)},
		session:    &sessionTable{table: make(map[string]*schedule.Session)},
		tracking:   &trackingTable{table: make(map[string]*curriculum.Tracking)},
		lesson:     &lessonTable{table: make(map[string]*lesson.Lesson)},
		attendance: &attendanceTable{table: make(map[string]*attendance.Record)},
		document:   &documentTable{table: make(map[string]*document.Document)},
	}
	return db, nil
}

// SeedStudents loads students directly; tests and local bootstrapping only.
func (db *DB) SeedStudents(students ...schedule.Student) {
	db.student.mutex.Lock()
	defer db.student.mutex.Unlock()
	for i := range students {
		st := students[i]
		db.student.table[st.ID] = &st
	}
}
