package domain

// Decision is the outcome of an authorization check.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// RoleRequirement is the set of roles declared by a protected operation.
// An empty requirement admits any authenticated identity.
type RoleRequirement []Role

// Requires builds a RoleRequirement from roles.
func Requires(roles ...Role) RoleRequirement {
	return RoleRequirement(roles)
}

// Authorize decides whether identity may invoke an operation declaring
// required. It is a pure function of its inputs and fails closed: a nil
// identity is always denied, and a non-empty requirement needs at least one
// valid role in common with the identity.
func Authorize(identity *Identity, required RoleRequirement) Decision {
	if identity == nil {
		return Deny
	}
	if len(required) == 0 {
		return Allow
	}
	for _, r := range required {
		if r.IsValid() && identity.HasRole(r) {
			return Allow
		}
	}
	return Deny
}
