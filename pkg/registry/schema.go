// pkg/registry/schema.go
package registry

// ActivityRegistry is the on-disk seed document the activity registry is
// built from at startup.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated,omitempty"`
	Activities  []Activity `json:"activities"`
}

// Activity is one seeded extracurricular activity.
type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}
