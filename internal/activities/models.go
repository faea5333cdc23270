// internal/activities/models.go
package activities

// ActivityDetails is the public view of one activity, keyed by name in
// listings.
type ActivityDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// MessageResponse is the body returned by successful mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// Result describes a successful mutation.
type Result struct {
	Message          string
	Activity         string
	Email            string
	ParticipantCount int
}

func (d ActivityDetails) clone() ActivityDetails {
	out := d
	out.Participants = append(make([]string, 0, len(d.Participants)), d.Participants...)
	return out
}
