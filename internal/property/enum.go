package property

import (
	"math"
	"strconv"
)

// Member is one (name, value) pair of an enumeration.
type Member struct {
	Name  string
	Value int
}

func (m Member) valueString() string { return strconv.Itoa(m.Value) }

// Enum is an ordered list of members. Member order is the order of the
// entries in the host's drop-down.
type Enum struct {
	name    string
	members []Member
}

// NewEnum creates an enumeration. Member names and values must be unique.
func NewEnum(name string, members ...Member) (Enum, error) {
	if len(members) == 0 {
		return Enum{}, configErrorf(name, "enumeration must have at least one member")
	}

	names := make(map[string]struct{}, len(members))
	values := make(map[int]string, len(members))

	for _, m := range members {
		if m.Name == "" {
			return Enum{}, configErrorf(name, "enumeration member names must not be empty")
		}

		if err := checkText(name, "enumeration member", m.Name); err != nil {
			return Enum{}, err
		}

		if m.Value < math.MinInt32 || m.Value > math.MaxInt32 {
			return Enum{}, configErrorf(name, "member %q value %d is outside the range %d to %d", m.Name, m.Value, math.MinInt32, math.MaxInt32)
		}

		if _, dup := names[m.Name]; dup {
			return Enum{}, configErrorf(name, "duplicate enumeration member %q", m.Name)
		}

		if other, dup := values[m.Value]; dup {
			return Enum{}, configErrorf(name, "members %q and %q share value %d", other, m.Name, m.Value)
		}

		names[m.Name] = struct{}{}
		values[m.Value] = m.Name
	}

	return Enum{name: name, members: append([]Member(nil), members...)}, nil
}

// Name returns the enumeration name.
func (e Enum) Name() string { return e.name }

// Members returns a copy of the members in declaration order.
func (e Enum) Members() []Member {
	return append([]Member(nil), e.members...)
}

// Lookup finds a member by name.
func (e Enum) Lookup(name string) (Member, bool) {
	for _, m := range e.members {
		if m.Name == name {
			return m, true
		}
	}

	return Member{}, false
}
