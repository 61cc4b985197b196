package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-transcript/captions"
	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/validation"
)

const (
	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"

	recaptchaMarker = "g-recaptcha"
)

var apiKeyPattern = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)

type innertubeRequest struct {
	Context innertubeContext `json:"context"`
	VideoID string           `json:"videoId"`
}

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

// ListTranscripts resolves input to a video id and returns every caption
// track YouTube advertises for it.
func (c *Client) ListTranscripts(ctx context.Context, input string) (*models.Catalog, error) {
	videoID, err := validation.ResolveVideoID(input)
	if err != nil {
		return nil, err
	}
	log := c.logger.WithField("video_id", videoID)

	page, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch watch page")
		return nil, err
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	apiKey, err := extractAPIKey(videoID, page)
	if err != nil {
		log.WithError(err).Warn("Failed to extract innertube API key")
		return nil, err
	}

	player, err := c.fetchPlayer(ctx, videoID, apiKey)
	if err != nil {
		log.WithError(err).Warn("Innertube player request failed")
		return nil, err
	}

	// the caller's identifier decides whether "unavailable" means a bad URL
	if err := captions.CheckPlayability(strings.TrimSpace(input), player); err != nil {
		log.WithError(err).Warn("Video is not playable")
		return nil, err
	}

	catalog, err := captions.ExtractCatalog(videoID, player)
	if err != nil {
		log.WithError(err).Warn("No caption tracks")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"manually_created": len(catalog.ManuallyCreated),
		"generated":        len(catalog.Generated),
	}).Debug("Listed transcripts")
	return catalog, nil
}

// fetchWatchPage downloads the watch page, getting past the consent wall
// with one retry when it shows up.
func (c *Client) fetchWatchPage(ctx context.Context, videoID string) (string, error) {
	const op = "fetchWatchPage"

	if err := c.wait(ctx); err != nil {
		return "", err
	}

	pageURL, err := url.Parse(fmt.Sprintf(c.watchURL, videoID))
	if err != nil {
		return "", errors.Transport(op, videoID, err)
	}

	body, err := c.get(ctx, op, videoID, pageURL.String(), maxPageBytes)
	if err != nil {
		return "", err
	}
	page := string(body)

	if c.consent == nil || !c.consent.Detect(page) {
		return page, nil
	}

	c.logger.WithField("video_id", videoID).Info("Consent wall detected, retrying with consent cookie")
	if err := c.consent.Acknowledge(c.httpClient.Jar, pageURL, page); err != nil {
		e := errors.New(errors.FailedToCreateConsentCookie, op, videoID)
		e.Err = err
		return "", e
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}

	body, err = c.get(ctx, op, videoID, pageURL.String(), maxPageBytes)
	if err != nil {
		return "", err
	}
	page = string(body)

	if c.consent.Detect(page) {
		return "", errors.New(errors.FailedToCreateConsentCookie, op, videoID)
	}
	return page, nil
}

func extractAPIKey(videoID, page string) (string, error) {
	if strings.Contains(page, recaptchaMarker) {
		return "", errors.New(errors.IPBlocked, "extractAPIKey", videoID)
	}
	m := apiKeyPattern.FindStringSubmatch(page)
	if len(m) < 2 {
		return "", errors.Unparsable("extractAPIKey", videoID, "INNERTUBE_API_KEY not found")
	}
	return m[1], nil
}

func (c *Client) fetchPlayer(ctx context.Context, videoID, apiKey string) (*captions.PlayerResponse, error) {
	const op = "fetchPlayer"

	payload, err := json.Marshal(innertubeRequest{
		Context: innertubeContext{Client: innertubeClient{
			ClientName:    innertubeClientName,
			ClientVersion: innertubeClientVersion,
		}},
		VideoID: videoID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "marshal innertube request")
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf(c.innertubeURL, apiKey), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Transport(op, videoID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, op, videoID, maxPlayerBytes)
	if err != nil {
		return nil, err
	}

	return captions.ParsePlayerResponse(videoID, body)
}
