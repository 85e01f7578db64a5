package tracking

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	methodPOST        = "POST"
	contentTypeJSON   = "application/json"
	apiBasePath       = "rest"
	importPath        = "v1/import"
	dateLayoutISO8601 = "2006-01-02T15:04:05-07:00"
)

// ImportPath is the request path covered by the signature.
const ImportPath = "/" + apiBasePath + "/" + importPath

// FormatDate renders t in UTC as ISO-8601 with a numeric offset,
// e.g. 2024-01-01T00:00:00+00:00.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayoutISO8601)
}

// ContentDigest is the hex MD5 of the request body.
func ContentDigest(body []byte) string {
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:])
}

// CanonicalString joins the signed request parts with newlines.
func CanonicalString(method, contentMD5, contentType, date string, body []byte, path string) string {
	return strings.Join([]string{
		method,
		contentMD5,
		contentType,
		date,
		string(body),
		path,
	}, "\n")
}

// Sign returns the hex HMAC-SHA256 of content. The secret is used as raw
// bytes even though it is distributed as a hex string.
func Sign(secret string, content []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// AuthorizationHeader formats "{realm} {user}:{signature}".
func AuthorizationHeader(realm, user, signature string) string {
	return fmt.Sprintf("%s %s:%s", realm, user, signature)
}

// SignedRequest is everything needed to send one import call.
type SignedRequest struct {
	Method        string
	URL           string
	ContentType   string
	Date          string
	Body          []byte
	ContentMD5    string
	Signature     string
	Authorization string
}

func signRequest(cfg Config, body []byte, now time.Time) *SignedRequest {
	date := FormatDate(now)
	digest := ContentDigest(body)
	canonical := CanonicalString(methodPOST, digest, contentTypeJSON, date, body, ImportPath)
	signature := Sign(cfg.Secret, []byte(canonical))

	return &SignedRequest{
		Method:        methodPOST,
		URL:           strings.TrimRight(cfg.BaseURL, "/") + ImportPath,
		ContentType:   contentTypeJSON,
		Date:          date,
		Body:          body,
		ContentMD5:    digest,
		Signature:     signature,
		Authorization: AuthorizationHeader(cfg.Realm, cfg.User, signature),
	}
}
