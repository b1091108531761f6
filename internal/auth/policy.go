package auth

import (
	"fmt"
	"strings"
)

// Operation identifiers. Every protected endpoint names exactly one of these
// so the whole permission surface lives in a single table below instead of
// being scattered across handler annotations.
const (
	OpClientsView   = "clients.view"
	OpClientsCreate = "clients.create"
	OpClientsUpdate = "clients.update"
	OpClientsDelete = "clients.delete"

	OpDraftsView   = "drafts.view"
	OpDraftsCreate = "drafts.create"
	OpDraftsUpdate = "drafts.update"
	OpDraftsDelete = "drafts.delete"

	OpLogsView = "logs.view"
)

// Outcome tags an access decision.
type Outcome int

const (
	Allow Outcome = iota
	Unauthenticated
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Decision is the result of an authorization check. Message is set for
// Forbidden outcomes that warrant a more specific response than the default.
type Decision struct {
	Outcome Outcome
	Message string
}

const forbiddenMessage = "Insufficient permissions"

var allowed = Decision{Outcome: Allow}

// Policy decides whether an identity may perform an operation. It holds the
// static role table and the ownership predicate; it performs no I/O.
type Policy struct {
	rules map[string]map[Role]struct{}
}

// NewPolicy builds the policy with the built-in operation table.
func NewPolicy() *Policy {
	p := &Policy{rules: make(map[string]map[Role]struct{})}
	p.permit(OpClientsView, RoleAdmin, RoleEditor, RoleViewer)
	p.permit(OpClientsCreate, RoleAdmin, RoleEditor)
	p.permit(OpClientsUpdate, RoleAdmin, RoleEditor)
	p.permit(OpClientsDelete, RoleAdmin, RoleEditor)
	p.permit(OpDraftsView, RoleAdmin, RoleEditor)
	p.permit(OpDraftsCreate, RoleAdmin, RoleEditor)
	p.permit(OpDraftsUpdate, RoleAdmin, RoleEditor)
	p.permit(OpDraftsDelete, RoleAdmin, RoleEditor)
	p.permit(OpLogsView, RoleAdmin, RoleEditor)
	return p
}

func (p *Policy) permit(op string, roles ...Role) {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	p.rules[op] = set
}

// Authorize checks the role table for op. A nil identity means the request
// carried no usable token. Unknown operations deny by default.
func (p *Policy) Authorize(identity *Identity, op string) Decision {
	if identity == nil {
		return Decision{Outcome: Unauthenticated}
	}
	roles, ok := p.rules[op]
	if !ok {
		return Decision{Outcome: Forbidden, Message: forbiddenMessage}
	}
	if _, ok := roles[identity.Role]; !ok {
		return Decision{Outcome: Forbidden, Message: forbiddenMessage}
	}
	return allowed
}

// AuthorizeOwned extends Authorize with the ownership predicate for
// operations on a specific resource instance. Admins pass unconditionally;
// any other permitted role must own the resource, compared by
// case-insensitive email equality. The caller is expected to have resolved
// the resource already: a missing resource is NotFound, never a policy matter.
func (p *Policy) AuthorizeOwned(identity *Identity, op, ownerEmail, action, resource string) Decision {
	if d := p.Authorize(identity, op); d.Outcome != Allow {
		return d
	}
	if identity.Role == RoleAdmin {
		return allowed
	}
	if strings.EqualFold(identity.Email, ownerEmail) {
		return allowed
	}
	return Decision{
		Outcome: Forbidden,
		Message: fmt.Sprintf("You cannot %s another user's %s", action, resource),
	}
}
