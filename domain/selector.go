package domain

type ContentScope string

const (
	ContentScopeGlobal     ContentScope = "global"
	ContentScopeAllSources ContentScope = "allSources"
	ContentScopeByTarget   ContentScope = "byTarget"
	ContentScopeByUser     ContentScope = "byUser"
)

// ContentSelector chooses which content query a refresh session invokes.
// Identifier fields are pointers so a half-initialized selector is
// distinguishable from one pointing at id zero.
type ContentSelector struct {
	Scope      ContentScope
	TargetType string
	TargetID   *uint64
	UserID     *uint64
}

// Ready reports whether the selector carries every identifier its scope
// requires. A not-ready selector makes the refresh tick a silent no-op.
func (s ContentSelector) Ready() bool {
	switch s.Scope {
	case ContentScopeGlobal, ContentScopeAllSources:
		return true
	case ContentScopeByTarget:
		return s.TargetType != "" && s.TargetID != nil
	case ContentScopeByUser:
		return s.UserID != nil
	default:
		return false
	}
}

type TaskScope string

const (
	TaskScopeAll          TaskScope = "all"
	TaskScopeAssigned     TaskScope = "assigned"
	TaskScopeCreated      TaskScope = "created"
	TaskScopeByProject    TaskScope = "byProject"
	TaskScopeByDepartment TaskScope = "byDepartment"
	TaskScopeByStatus     TaskScope = "byStatus"
)

type TaskSelector struct {
	Scope        TaskScope
	UserID       *uint64
	ProjectID    *uint64
	DepartmentID *uint64
	Status       *TaskStatus
}

func (s TaskSelector) Ready() bool {
	switch s.Scope {
	case TaskScopeAll:
		return true
	case TaskScopeAssigned, TaskScopeCreated:
		return s.UserID != nil
	case TaskScopeByProject:
		return s.ProjectID != nil
	case TaskScopeByDepartment:
		return s.DepartmentID != nil
	case TaskScopeByStatus:
		return s.Status != nil
	default:
		return false
	}
}
