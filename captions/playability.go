package captions

import (
	"encoding/json"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/validation"
)

const (
	statusOK            = "OK"
	statusLoginRequired = "LOGIN_REQUIRED"
	statusError         = "ERROR"

	reasonBotCheck      = "Sign in to confirm you're not a bot"
	reasonAgeRestricted = "inappropriate for some users"
	reasonUnavailable   = "unavailable"
)

// PlayerResponse is the decoded body of the innertube /player call.
type PlayerResponse struct {
	root node
}

// ParsePlayerResponse decodes an innertube /player body. Anything that is not
// a JSON object is a JSONParseError.
func ParsePlayerResponse(videoID string, body []byte) (*PlayerResponse, error) {
	var root node
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, errors.JSON("ParsePlayerResponse", videoID, err)
	}
	if root == nil {
		root = node{}
	}
	return &PlayerResponse{root: root}, nil
}

// Playability returns the raw status and reason strings, and whether the
// response carried a playabilityStatus block at all.
func (p *PlayerResponse) Playability() (status, reason string, present bool) {
	ps, ok := p.root.object("playabilityStatus")
	if !ok {
		return "", "", false
	}
	status, _ = ps.str("status")
	reason, _ = ps.str("reason")
	return status, reason, true
}

// CheckPlayability maps the playability block onto the error taxonomy.
// identifier is the video identifier as the caller supplied it.
func CheckPlayability(identifier string, p *PlayerResponse) error {
	status, reason, present := p.Playability()
	if !present || status == statusOK {
		return nil
	}

	switch status {
	case statusLoginRequired:
		if strings.Contains(reason, reasonBotCheck) {
			return errors.New(errors.RequestBlocked, "CheckPlayability", identifier)
		}
		if strings.Contains(reason, reasonAgeRestricted) {
			return errors.New(errors.AgeRestricted, "CheckPlayability", identifier)
		}
	case statusError:
		if strings.Contains(reason, reasonUnavailable) {
			if validation.LooksLikeURL(identifier) {
				return errors.InvalidVideo("CheckPlayability", identifier)
			}
			return errors.New(errors.VideoUnavailable, "CheckPlayability", identifier)
		}
	}

	return errors.Unplayable("CheckPlayability", identifier, reason)
}
