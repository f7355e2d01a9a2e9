package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/igortacu/summer-hackathon-sub000/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

var (
	AllRoles = []string{RoleStudent, RoleMentor, RoleAdmin}

	// RegistrationRoles may be picked on sign-up; admins are created with the admin CLI.
	RegistrationRoles = []string{RoleStudent, RoleMentor}

	rolePriorities = map[string]int{
		RoleAdmin:   30,
		RoleMentor:  20,
		RoleStudent: 10,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AcademicGroup string    `json:"academic_group"`
	PBLGroup      string    `json:"pbl_group"`
	ProjectName   string    `json:"project_name"`
	GithubURL     string    `json:"github_url"`
	IsActive      bool      `json:"is_active"`
	PasswordHash  []byte    `json:"-"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
	LastLogin     time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsMentor() bool  { return RolePriority(u.Role) >= RolePriority(RoleMentor) }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// CanAssignRole reports whether u may give role to a user: nobody grants above their own rank.
func (u User) CanAssignRole(role string) bool {
	return RolePriority(role) > 0 && RolePriority(role) <= RolePriority(u.Role)
}

// CanView reports whether u may read other's profile and activity.
func (u User) CanView(other User) bool {
	return u.ID == other.ID || u.IsMentor()
}

// InGroup reports whether u is a member of the PBL group.
func (u User) InGroup(group string) bool {
	return group != "" && u.PBLGroup == group
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,role"`
	AcademicGroup   string `json:"academic_group"`
	PBLGroup        string `json:"pbl_group" validate:"omitempty,pblgroup"`
	ProjectName     string `json:"project_name"`
	GithubURL       string `json:"github_url" validate:"omitempty,url"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.AcademicGroup = core.CleanString(nu.AcademicGroup)
	nu.PBLGroup = core.CleanString(nu.PBLGroup)
	nu.ProjectName = core.CleanString(nu.ProjectName)
	nu.GithubURL = core.CleanString(nu.GithubURL)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty fields keep their current value.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,role"`
	AcademicGroup   string `json:"academic_group"`
	PBLGroup        string `json:"pbl_group" validate:"omitempty,pblgroup"`
	ProjectName     string `json:"project_name"`
	GithubURL       string `json:"github_url" validate:"omitempty,url"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

// Merge cleans uu and fills its empty fields from origUsr.
func (uu *UpdateUser) Merge(origUsr User) {
	keep := func(val *string, orig string, lower bool) {
		if v := core.CleanString(*val, lower); v != "" {
			*val = v
		} else {
			*val = orig
		}
	}
	keep(&uu.Name, origUsr.Name, false)
	keep(&uu.Email, origUsr.Email, true)
	keep(&uu.Role, origUsr.Role, true)
	keep(&uu.AcademicGroup, origUsr.AcademicGroup, false)
	keep(&uu.PBLGroup, origUsr.PBLGroup, false)
	keep(&uu.ProjectName, origUsr.ProjectName, false)
	keep(&uu.GithubURL, origUsr.GithubURL, false)
	if uu.IsActive == nil {
		isActive := origUsr.IsActive
		uu.IsActive = &isActive
	}
}

type QueryFilter struct {
	Search   string `query:"search"`
	Role     string `query:"role" validate:"omitempty,role"`
	PBLGroup string `query:"group" validate:"omitempty,pblgroup"`
	IsActive *bool  `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.PBLGroup == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.PBLGroup = core.CleanString(qf.PBLGroup)
}

// Match applies the filter to a single user; Search is a case-insensitive substring match on name or email.
func (qf *QueryFilter) Match(usr User) bool {
	if qf == nil {
		return true
	}
	if qf.Search != "" {
		s := core.CleanString(qf.Search, true)
		if !containsFold(usr.Name, s) && !containsFold(usr.Email, s) {
			return false
		}
	}
	if qf.Role != "" && usr.Role != qf.Role {
		return false
	}
	if qf.PBLGroup != "" && usr.PBLGroup != qf.PBLGroup {
		return false
	}
	if qf.IsActive != nil && usr.IsActive != *qf.IsActive {
		return false
	}
	return true
}

func containsFold(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}
