package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// UserType is the role a backend account signs in as.
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeTeacher UserType = "teacher"
	UserTypeAdmin   UserType = "admin"
	UserTypeParent  UserType = "parent"
)

// UserTypes lists every role the platform knows about.
var UserTypes = []UserType{UserTypeStudent, UserTypeTeacher, UserTypeAdmin, UserTypeParent}

// String returns the string form of the user type.
func (t UserType) String() string { return string(t) }

// Valid reports whether t is one of the known roles.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeStudent, UserTypeTeacher, UserTypeAdmin, UserTypeParent:
		return true
	}
	return false
}

// DashboardPath returns the landing route for the role. Unknown roles go back to /login.
func (t UserType) DashboardPath() string {
	if !t.Valid() {
		return "/login"
	}
	return "/dashboard/" + string(t)
}

// DisplayName returns a human label for the role.
func (t UserType) DisplayName() string {
	switch t {
	case UserTypeStudent:
		return "Student"
	case UserTypeTeacher:
		return "Teacher"
	case UserTypeAdmin:
		return "Administrator"
	case UserTypeParent:
		return "Parent"
	default:
		return "User"
	}
}

func (t UserType) HasAdminPrivileges() bool { return t == UserTypeAdmin }

func (t UserType) CanManageCourses() bool {
	return t == UserTypeAdmin || t == UserTypeTeacher
}

func (t UserType) CanViewStudentData() bool {
	return t == UserTypeAdmin || t == UserTypeTeacher || t == UserTypeParent
}

// Profile is the signed-in account as returned by the backend. The common
// fields are decoded; every other field (student_id, qr_code, specialization,
// ...) is kept verbatim in Extra so a persisted profile round-trips unchanged.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	Extra map[string]json.RawMessage `json:"-"`
}

// RoleID returns the role-specific identifier (student_id, teacher_id, ...)
// or 0 when the backend did not send one.
func (p Profile) RoleID(t UserType) int64 {
	raw, ok := p.Extra[string(t)+"_id"]
	if !ok {
		return 0
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0
	}
	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// MarshalJSON writes the known fields over the preserved extras.
func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["id"] = p.ID
	out["name"] = p.Name
	out["email"] = p.Email
	return json.Marshal(out)
}

// UnmarshalJSON mirrors MarshalJSON. A profile without "id" takes the first
// role-specific id it carries, which is how /auth/me describes accounts.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	type known struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	delete(fields, "id")
	delete(fields, "name")
	delete(fields, "email")

	*p = Profile{ID: k.ID, Name: k.Name, Email: k.Email}
	if len(fields) > 0 {
		p.Extra = fields
	}
	if p.ID == 0 {
		for _, t := range UserTypes {
			if id := p.RoleID(t); id != 0 {
				p.ID = id
				break
			}
		}
	}
	return nil
}

// Clone returns a copy that shares nothing mutable with p.
func (p Profile) Clone() Profile {
	if p.Extra != nil {
		extra := make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		p.Extra = extra
	}
	return p
}
