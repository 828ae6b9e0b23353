package model

import (
	"errors"
	"net/url"
	"strings"
)

// DefaultAvatarBaseURL generates an avatar from a seed when none is supplied.
const DefaultAvatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"

// CrewMember represents a participant in the user's cleanup crew.
type CrewMember struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	JoinedDate string `json:"joinedDate"`
}

// AddCrewMemberParams represents parameters for adding a crew member.
type AddCrewMemberParams struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Normalize trims input and fills in the default avatar.
func (p *AddCrewMemberParams) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Avatar = strings.TrimSpace(p.Avatar)
	if p.Avatar == "" && p.Name != "" {
		p.Avatar = DefaultAvatarURL(p.Name)
	}
}

// Validate validates the add crew member parameters.
func (p *AddCrewMemberParams) Validate() error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrInvalidName)
	}

	if p.Avatar != "" {
		u, err := url.Parse(p.Avatar)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ErrInvalidAvatar)
		}
	}

	return errors.Join(errs...)
}

// DefaultAvatarURL returns the generated avatar URL for name.
func DefaultAvatarURL(name string) string {
	q := url.Values{}
	q.Set("seed", name)
	return DefaultAvatarBaseURL + "?" + q.Encode()
}
