// Package inmemdb holds map-backed repositories for tests and database-less runs.
package inmemdb

import (
	"sync"

	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/task"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
)

type (
	DB struct {
		user     *userTable
		activity *activityTable
		task     *taskTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	sampleKey struct {
		userID string
		date   activity.Date
	}

	activityTable struct {
		table map[sampleKey]int
		mutex sync.RWMutex
	}

	taskTable struct {
		table map[string]*task.Task
		mutex sync.RWMutex
	}
)

func NewDB() *DB {
	return &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		activity: &activityTable{table: make(map[sampleKey]int)},
		task:     &taskTable{table: make(map[string]*task.Task)},
	}
}
