package registry

import (
	"bytes"
	"encoding/json"
)

// Activity is one extracurricular offering and its roster.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

func (a Activity) clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

func (a Activity) indexOf(email string) int {
	for i, p := range a.Participants {
		if p == email {
			return i
		}
	}
	return -1
}

// Entry pairs an activity with its name. Seeds are ordered slices of entries
// so the catalog order survives into List.
type Entry struct {
	Name     string
	Activity Activity
}

// Snapshot is a point-in-time copy of the registry. It encodes as a JSON
// object keyed by activity name, in seed order.
type Snapshot struct {
	names      []string
	activities map[string]Activity
}

func (s Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s Snapshot) Get(name string) (Activity, bool) {
	a, ok := s.activities[name]
	return a, ok
}

func (s Snapshot) Len() int {
	return len(s.names)
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.activities[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Confirmation is returned by successful roster changes.
type Confirmation struct {
	Message string `json:"message"`
}
