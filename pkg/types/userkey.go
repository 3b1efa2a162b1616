package types

import "fmt"

// UserKey identifies one replica of an atemporal variable: the logical name
// plus the time slice it lives in.
type UserKey struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Slice int    `json:"slice" yaml:"slice" mapstructure:"slice"`
}

// Key is shorthand for building a UserKey.
func Key(name string, slice int) UserKey {
	return UserKey{Name: name, Slice: slice}
}

// String renders the key in the ('name', slice) form used everywhere a key is
// shown to a user.
func (k UserKey) String() string {
	return fmt.Sprintf("('%s', %d)", k.Name, k.Slice)
}

// Arc is a directed dependency between two variable replicas.
type Arc struct {
	Tail UserKey `json:"tail" yaml:"tail" mapstructure:"tail"`
	Head UserKey `json:"head" yaml:"head" mapstructure:"head"`
}

// String renders the arc as ('A', 0) -> ('B', 1).
func (a Arc) String() string {
	return fmt.Sprintf("%s -> %s", a.Tail, a.Head)
}

// Offset is the time distance between the arc's head and tail. For transition
// arcs this is the lag reapplied at every unrolled slice.
func (a Arc) Offset() int {
	return a.Head.Slice - a.Tail.Slice
}

// Evidence maps variable replicas to states for CPT reads and writes.
type Evidence map[UserKey]int
