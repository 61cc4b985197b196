package transcription

import (
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/net/html"
)

const consentFormAction = `action="https://consent.youtube.com/s"`

// ConsentHandler recognises a consent interstitial and prepares the client
// to get past it on the next request.
type ConsentHandler interface {
	Detect(page string) bool
	Acknowledge(jar http.CookieJar, pageURL *url.URL, page string) error
}

// CookieConsent answers the EU consent wall by reading the hidden "v" input
// of the consent form and storing CONSENT=YES+<v> in the cookie jar.
type CookieConsent struct{}

func (CookieConsent) Detect(page string) bool {
	return strings.Contains(page, consentFormAction)
}

func (CookieConsent) Acknowledge(jar http.CookieJar, pageURL *url.URL, page string) error {
	value, ok := consentValue(page)
	if !ok {
		return pkgerrors.New("consent form has no v input")
	}
	if jar != nil && pageURL != nil {
		jar.SetCookies(pageURL, []*http.Cookie{{
			Name:  "CONSENT",
			Value: "YES+" + value,
			Path:  "/",
		}})
	}
	return nil
}

// consentValue finds <input name="v" value="..."> in the page.
func consentValue(page string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}
			var name, value string
			var hasValue bool
			for _, a := range tok.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "value":
					value, hasValue = a.Val, true
				}
			}
			if name == "v" && hasValue {
				return value, true
			}
		}
	}
}
