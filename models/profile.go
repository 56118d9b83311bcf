package models

// Profile is the displayable identity of a record's author.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`

	// unknown marks the sentinel returned when resolution failed or
	// the record carried no author at all.
	unknown bool
}

const unknownDisplayName = "Unknown User"

// UnknownProfile is the sentinel cached for authors that could not be
// resolved. It is a real value, not an error: feed rendering treats it
// like any other profile.
func UnknownProfile(id string) Profile {
	return Profile{
		ID:          id,
		DisplayName: unknownDisplayName,
		unknown:     true,
	}
}

func (p Profile) Unknown() bool { return p.unknown }
