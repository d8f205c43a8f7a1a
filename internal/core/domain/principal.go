package domain

// Role is the fixed set of roles a session can carry.
type Role string

const (
	RoleSuperAdmin      Role = "SuperAdmin"
	RolePiloteProcessus Role = "PiloteProcessus"
	RolePilote          Role = "Pilote"
	RoleUtilisateur     Role = "Utilisateur"
)

// Roles lists every role, most privileged first.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RolePiloteProcessus, RolePilote, RoleUtilisateur}
}

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RolePiloteProcessus, RolePilote, RoleUtilisateur:
		return true
	}
	return false
}

// Principal is the authenticated actor. It is built once per request from the
// identity token and never changes afterwards.
type Principal struct {
	Role     Role   `json:"role"`
	Username string `json:"username,omitempty"`
}

// Visibility is the audience tag carried by a field definition.
type Visibility string

const (
	VisibilityAll         Visibility = "All"
	VisibilitySAPP        Visibility = "SA_PP"
	VisibilityPilote      Visibility = "Pilote"
	VisibilityUtilisateur Visibility = "Utilisateur"
)

func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityAll, VisibilitySAPP, VisibilityPilote, VisibilityUtilisateur:
		return true
	}
	return false
}

var audience = map[Role]map[Visibility]struct{}{
	RoleSuperAdmin:      {VisibilityAll: {}, VisibilitySAPP: {}, VisibilityPilote: {}, VisibilityUtilisateur: {}},
	RolePiloteProcessus: {VisibilityAll: {}, VisibilitySAPP: {}, VisibilityPilote: {}, VisibilityUtilisateur: {}},
	RolePilote:          {VisibilityAll: {}, VisibilityPilote: {}, VisibilityUtilisateur: {}},
	RoleUtilisateur:     {VisibilityAll: {}, VisibilityUtilisateur: {}},
}

// Sees reports whether the principal is in the audience of a visibility tag.
// Unknown roles only see fields tagged All; an empty tag means All.
func (p Principal) Sees(v Visibility) bool {
	if v == "" || v == VisibilityAll {
		return true
	}
	set, ok := audience[p.Role]
	if !ok {
		return false
	}
	_, ok = set[v]
	return ok
}
