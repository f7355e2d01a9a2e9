package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/task"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
	logsvc "github.com/igortacu/summer-hackathon-sub000/services/logger"
	inmemdb "github.com/igortacu/summer-hackathon-sub000/storage/database/inmem"
)

// Password satisfies the password policy.
const Password = "Sup3r-s3cret!pbl"

// Stores holds in-memory repositories sharing one DB.
type Stores struct {
	DB       *inmemdb.DB
	User     user.Repository
	Activity activity.Repository
	Task     task.Repository
}

func NewStores() Stores {
	db := inmemdb.NewDB()
	return Stores{
		DB:       db,
		User:     inmemdb.NewUserRepository(db),
		Activity: inmemdb.NewActivityRepository(db),
		Task:     inmemdb.NewTaskRepository(db),
	}
}

func NewConfig() *core.Config {
	return &core.Config{
		AppName:         "Bublink",
		Env:             "TEST",
		Build:           "test",
		TestMode:        true,
		SecretKey:       "test-secret-key",
		FrontendBaseURL: "http://localhost:5173",
		Server: core.ServerConfig{
			Host:                      "localhost",
			Address:                   ":0",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        15 * time.Minute,
			JWTRefreshExpirationDelta: 7 * 24 * time.Hour,
			DisableReqLogs:            true,
		},
		Database: core.DatabaseConfig{InMemory: true},
		Activity: core.ActivityConfig{
			Timezone:           "UTC",
			WeekStartsOnMonday: true,
			MaxCount:           activity.DefaultMaxCount,
			Density:            activity.DefaultDensity,
			GitConcurrency:     2,
		},
	}
}

// NewValidator returns a validator with every custom tag of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	task.InitValidators(validate, translator)
	return validate, translator
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role, group string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if role == "" {
		role = user.RoleStudent
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		PBLGroup:  group,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// AddSamples stores samples for userID, failing the test on error.
func AddSamples(t *testing.T, repo activity.Repository, userID string, samples ...activity.Sample) {
	t.Helper()
	if err := repo.UpsertSamples(context.Background(), userID, samples); err != nil {
		t.Fatalf("addSamples() failed: %v", err)
	}
}

// CreateTask stores a todo task due on due, failing the test on error.
func CreateTask(t *testing.T, repo task.Repository, title string, assignee user.User, due string, createdBy ...string) task.Task {
	t.Helper()

	now := time.Now().UTC()
	tsk := task.Task{
		Title:      title,
		AssignedTo: assignee.ID,
		PBLGroup:   assignee.PBLGroup,
		Status:     task.StatusTodo,
		Priority:   task.PriorityMedium,
		DueDate:    activity.MustParseDate(due),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(createdBy) > 0 {
		tsk.CreatedBy = createdBy[0]
	}
	tsk.Hash = tsk.ContentHash()
	tsk, err := repo.CreateTask(context.Background(), tsk)
	if err != nil {
		t.Fatalf("createTask() failed: %v", err)
	}
	return tsk
}
