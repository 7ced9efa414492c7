// Package joinlink builds the link a phone opens to join a session, and its
// QR rendering for the main screen. The session id is the only capability;
// whoever scans the code gets in.
package joinlink

import (
	"errors"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// Build returns the join URL for a session, e.g.
// https://play.example.com/join?session=<id>
func Build(baseURL, sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// QR renders the join URL as a PNG of the given pixel size
func QR(baseURL, sessionID string, size int) ([]byte, error) {
	link, err := Build(baseURL, sessionID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(link, qrcode.Medium, size)
}
