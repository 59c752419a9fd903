package inmemdb

import (
	"sync"

	"github.com/nexusalpri/academy/core/progress"
	"github.com/nexusalpri/academy/core/security"
	"github.com/nexusalpri/academy/core/user"
)

type (
	DB struct {
		user       *userTable
		lesson     *lessonTable
		enrollment *enrollmentTable
		progress   *progressTable
		secLog     *secLogTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	lessonRow struct {
		ID       string
		ModuleID string
	}

	lessonTable struct {
		sync.RWMutex
		table map[string][]lessonRow // {courseID: ordered lessons}
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*progress.Enrollment // {userID/courseID: Enrollment}
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.Record // {enrollmentID: Record}
	}

	secLogTable struct {
		sync.RWMutex
		table []security.Log
	}
)

func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		lesson:     &lessonTable{table: make(map[string][]lessonRow)},
		enrollment: &enrollmentTable{table: make(map[string]*progress.Enrollment)},
		progress:   &progressTable{table: make(map[string]*progress.Record)},
		secLog:     &secLogTable{},
	}
}

func enrollmentKey(userID, courseID string) string {
	return userID + "/" + courseID
}
