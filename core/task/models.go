package task

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
)

// Statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var (
	AllStatuses   = []string{StatusTodo, StatusInProgress, StatusDone}
	AllPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Task struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	AssignedTo  string        `json:"assigned_to"` // user ID
	PBLGroup    string        `json:"pbl_group"`   // assignee's group when the task was assigned
	Status      string        `json:"status"`
	Priority    string        `json:"priority"`
	DueDate     activity.Date `json:"due_date"`
	Hash        string        `json:"hash"`
	CreatedBy   string        `json:"created_by"` // empty once the creator is deleted
	CreatedAt   time.Time     `json:"created_at"` // UTC
	UpdatedAt   time.Time     `json:"updated_at"` // UTC
}

// ContentHash identifies a task by its content; two tasks may not share it.
func (t Task) ContentHash() string {
	h := sha256.New()
	for _, part := range []string{t.Title, t.Description, t.AssignedTo, t.Status, t.Priority} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// VisibleTo reports whether usr may read and edit t.
func (t Task) VisibleTo(usr user.User) bool {
	return usr.IsMentor() || t.AssignedTo == usr.ID || usr.InGroup(t.PBLGroup)
}

// IsOverdue reports whether t is unfinished past its due date.
func (t Task) IsOverdue(today activity.Date) bool {
	return t.Status != StatusDone && t.DueDate.Before(today)
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to" validate:"required"`
	Status      string `json:"status" validate:"omitempty,taskstatus"`
	Priority    string `json:"priority" validate:"omitempty,taskpriority"`
	DueDate     string `json:"due_date" validate:"required,isodate"`
	PBLGroup    string `json:"-"`
	CreatedBy   string `json:"-"`
}

func (nt *NewTask) Clean() {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = strings.TrimSpace(nt.Description)
	nt.AssignedTo = core.CleanString(nt.AssignedTo)
	nt.Status = core.CleanString(nt.Status, true /* lower */)
	nt.Priority = core.CleanString(nt.Priority, true /* lower */)
	nt.DueDate = core.CleanString(nt.DueDate)
	if nt.Status == "" {
		nt.Status = StatusTodo
	}
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
}

// UpdateTask defines what information may be provided to modify an existing Task.
// Empty fields keep their current value.
type UpdateTask struct {
	Title       string  `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	AssignedTo  string  `json:"assigned_to"`
	Status      string  `json:"status" validate:"omitempty,taskstatus"`
	Priority    string  `json:"priority" validate:"omitempty,taskpriority"`
	DueDate     string  `json:"due_date" validate:"omitempty,isodate"`
	PBLGroup    string  `json:"-"`
}

// Merge cleans ut and fills its empty fields from orig.
func (ut *UpdateTask) Merge(orig Task) {
	keep := func(val *string, orig string, lower bool) {
		if v := core.CleanString(*val, lower); v != "" {
			*val = v
		} else {
			*val = orig
		}
	}
	keep(&ut.Title, orig.Title, false)
	keep(&ut.AssignedTo, orig.AssignedTo, false)
	keep(&ut.Status, orig.Status, true)
	keep(&ut.Priority, orig.Priority, true)
	keep(&ut.DueDate, orig.DueDate.String(), false)
	keep(&ut.PBLGroup, orig.PBLGroup, false)
	if ut.Description == nil {
		desc := orig.Description
		ut.Description = &desc
	} else {
		desc := strings.TrimSpace(*ut.Description)
		ut.Description = &desc
	}
}

type QueryFilter struct {
	PBLGroup   string `query:"group" validate:"omitempty,pblgroup"`
	AssignedTo string `query:"assigned_to"`
	Status     string `query:"status" validate:"omitempty,taskstatus"`
	Priority   string `query:"priority" validate:"omitempty,taskpriority"`
	DueBy      string `query:"due_by" validate:"omitempty,isodate"` // inclusive
}

func (f *QueryFilter) Clean() {
	f.PBLGroup = core.CleanString(f.PBLGroup)
	f.AssignedTo = core.CleanString(f.AssignedTo)
	f.Status = core.CleanString(f.Status, true /* lower */)
	f.Priority = core.CleanString(f.Priority, true /* lower */)
	f.DueBy = core.CleanString(f.DueBy)
}

// Match applies AND operation on the set filter fields. A nil filter matches every task.
func (f *QueryFilter) Match(t Task) bool {
	if f == nil {
		return true
	}
	if f.PBLGroup != "" && t.PBLGroup != f.PBLGroup {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	// ISO dates sort lexically
	if f.DueBy != "" && t.DueDate.String() > f.DueBy {
		return false
	}
	return true
}
