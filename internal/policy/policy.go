// Package policy implements the resource lifecycle and access rules as pure
// functions.  It owns the moderation state machine for resources, the
// approval sub-state-machine for teacher accounts, the visibility predicate
// used by public listings, and the per-action authorization checks.  The
// package holds no state and performs no I/O: every decision is a function
// of the calling principal, a snapshot of the target entity and the
// requested action.  Handlers fetch the entity first, then consult this
// package, then mutate — existence failures (repository not-found
// sentinels) are therefore always reported before authorization failures.
package policy

import (
    "errors"
    "strings"
)

// ErrForbidden is returned when the entity exists but the principal fails
// the authorization predicate for the requested action.  Handlers translate
// it into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when a requested transition or value is not
// permitted by the state machine, such as approving a non-teacher account
// or rating outside the 1..5 range.  Handlers translate it into HTTP 400.
var ErrInvalidState = errors.New("invalid state")

// ErrConflict is returned when an operation cannot proceed because of
// dependent records, such as deleting a topic that still has resources.
// Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// Role names match the values stored in users.role and in the JWT "role"
// claim.
const (
    RoleStudent = "STUDENT"
    RoleTeacher = "TEACHER"
    RoleAdmin   = "ADMIN"
)

// Moderation statuses for resources.  PENDING is the only state a resource
// can be created in; every transition between known states is admin-only
// and unconditional.
const (
    StatusPending  = "PENDING"
    StatusApproved = "APPROVED"
    StatusRejected = "REJECTED"
)

// Principal is the authenticated identity (or anonymous caller) a request
// acts as.  It is built once per request by the handler layer from the JWT
// claims plus the user row, and never mutated during the call.
type Principal struct {
    ID                uint64 // user id, zero when anonymous
    Role              string // STUDENT, TEACHER or ADMIN
    IsActive          bool   // account enabled
    IsApprovedTeacher bool   // meaningful only for teachers
    IsBlocked         bool   // blocked users cannot mutate anything
    Anonymous         bool   // true for unauthenticated callers
}

// AnonymousPrincipal is the principal used for unauthenticated requests.
var AnonymousPrincipal = Principal{Anonymous: true}

// Resource is the snapshot of a resource row the engine decides against.
type Resource struct {
    ID            uint64
    AuthorID      uint64
    Status        string
    IsHidden      bool
    IsProblematic bool
}

// User is the snapshot of a user row used by account-moderation decisions.
type User struct {
    ID                uint64
    Role              string
    IsApprovedTeacher bool
    IsBlocked         bool
}

// Config carries the policy switches that differ between deployments.
// TagCreateAdminOnly reflects the two observed behaviours for tag creation:
// admin-only versus any authenticated user.
type Config struct {
    TagCreateAdminOnly bool
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return !p.Anonymous && p.Role == RoleAdmin }

// IsOwnerOf reports whether the principal authored the resource.
func (p Principal) IsOwnerOf(r Resource) bool { return !p.Anonymous && p.ID == r.AuthorID }

// canMutate is the base gate shared by every mutating action: the caller
// must be authenticated, active and not blocked.
func canMutate(p Principal) error {
    if p.Anonymous || p.ID == 0 {
        return ErrForbidden
    }
    if !p.IsActive || p.IsBlocked {
        return ErrForbidden
    }
    return nil
}

// ParseStatus normalizes a status string and rejects values outside the
// moderation state machine with ErrInvalidState.
func ParseStatus(s string) (string, error) {
    switch strings.ToUpper(strings.TrimSpace(s)) {
    case StatusPending:
        return StatusPending, nil
    case StatusApproved:
        return StatusApproved, nil
    case StatusRejected:
        return StatusRejected, nil
    }
    return "", ErrInvalidState
}

// ParseRole normalizes a registration role.  ADMIN is never
// self-assignable; unknown or empty values default to STUDENT.
func ParseRole(s string) string {
    switch strings.ToUpper(strings.TrimSpace(s)) {
    case RoleTeacher:
        return RoleTeacher
    default:
        return RoleStudent
    }
}

// VisibleToPublic is the visibility predicate for anonymous and unrelated
// authenticated principals: approved and not hidden.
func VisibleToPublic(r Resource) bool {
    return r.Status == StatusApproved && !r.IsHidden
}

// CanReadResource decides a direct fetch of a single resource.  The owner
// always sees their own resource regardless of status or hidden flag, and
// admins see everything; everyone else falls back to the public predicate.
func CanReadResource(p Principal, r Resource) error {
    if p.IsAdmin() || p.IsOwnerOf(r) {
        return nil
    }
    if VisibleToPublic(r) {
        return nil
    }
    return ErrForbidden
}

// CanCreateResource decides resource creation.  The author id is forced to
// the principal's id by the caller; any client-supplied author is ignored.
func CanCreateResource(p Principal) error { return canMutate(p) }

// CanUpdateResource decides content-field updates: author or admin.  Edits
// are allowed in every moderation state; only status and flags are guarded.
func CanUpdateResource(p Principal, r Resource) error {
    if err := canMutate(p); err != nil {
        return err
    }
    if p.IsAdmin() || p.IsOwnerOf(r) {
        return nil
    }
    return ErrForbidden
}

// CanDeleteResource decides deletion: author or admin.
func CanDeleteResource(p Principal, r Resource) error {
    return CanUpdateResource(p, r)
}

// CanModerate decides status and flag changes on resources as well as every
// admin-only listing: admin role required.
func CanModerate(p Principal) error {
    if err := canMutate(p); err != nil {
        return err
    }
    if !p.IsAdmin() {
        return ErrForbidden
    }
    return nil
}

// ValidateStatusTransition checks a moderation transition.  Any known state
// is reachable from any other; only unknown values are rejected.  The admin
// check is CanModerate's job, not this one's.
func ValidateStatusTransition(from, to string) error {
    if _, err := ParseStatus(from); err != nil {
        return err
    }
    if _, err := ParseStatus(to); err != nil {
        return err
    }
    return nil
}

// CanEngage decides likes, saves, ratings and comment creation: any
// authenticated, active, non-blocked user acting on their own sets.
func CanEngage(p Principal) error { return canMutate(p) }

// ValidateRating enforces the 1..5 bound on rating values.
func ValidateRating(value int) error {
    if value < 1 || value > 5 {
        return ErrInvalidState
    }
    return nil
}

// ValidateCommentBody rejects empty comment text.
func ValidateCommentBody(body string) error {
    if strings.TrimSpace(body) == "" {
        return ErrInvalidState
    }
    return nil
}

// CanDeleteComment decides comment deletion: the comment's author or an
// admin.
func CanDeleteComment(p Principal, commentAuthorID uint64) error {
    if err := canMutate(p); err != nil {
        return err
    }
    if p.IsAdmin() || p.ID == commentAuthorID {
        return nil
    }
    return ErrForbidden
}

// CanManageResourceTags decides add/remove of a tag on a resource's tag
// set: the resource's author or an admin.
func CanManageResourceTags(p Principal, r Resource) error {
    return CanUpdateResource(p, r)
}

// CanCreateTag decides tag creation according to the configured policy.
func CanCreateTag(p Principal, cfg Config) error {
    if err := canMutate(p); err != nil {
        return err
    }
    if cfg.TagCreateAdminOnly && !p.IsAdmin() {
        return ErrForbidden
    }
    return nil
}

// CanCreateTopic decides topic creation: admin only in both observed
// variants.
func CanCreateTopic(p Principal) error { return CanModerate(p) }

// CanAdministerUsers decides account listings, teacher approval and
// block/unblock: admin only.
func CanAdministerUsers(p Principal) error { return CanModerate(p) }

// ApproveTeacher checks the teacher-approval sub-state-machine for the
// target account.  Approving a non-teacher is an invalid-state error;
// approving an already-approved teacher is an accepted no-op.
func ApproveTeacher(target User) error {
    if target.Role != RoleTeacher {
        return ErrInvalidState
    }
    return nil
}
