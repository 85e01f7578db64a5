package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Recorder receives every finished submission.
type Recorder interface {
	Record(ctx context.Context, o Outcome)
}

type Submitter struct {
	cfg       Config
	client    *http.Client
	recorders []Recorder
	now       func() time.Time
}

type Option func(*Submitter)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Submitter) { s.client = client }
}

func WithRecorder(r Recorder) Option {
	return func(s *Submitter) { s.recorders = append(s.recorders, r) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Submitter) { s.now = now }
}

func NewSubmitter(cfg Config, opts ...Option) *Submitter {
	s := &Submitter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.timeout()},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Submitter) Config() Config {
	return s.cfg
}

// SubmitPageBrowse sends one signed page browse event for the visitor.
// It never returns an error: every failure is folded into the Result so a
// page render can ignore it.
func (s *Submitter) SubmitPageBrowse(ctx context.Context, visitor Visitor, pageURL string) Result {
	start := s.now()
	result, status, err := s.submit(ctx, visitor, pageURL)

	outcome := Outcome{
		PageURL:    pageURL,
		Result:     result,
		StatusCode: status,
		Err:        err,
		Duration:   s.now().Sub(start),
		At:         start,
	}
	for _, r := range s.recorders {
		r.Record(ctx, outcome)
	}
	return result
}

func (s *Submitter) submit(ctx context.Context, visitor Visitor, pageURL string) (Result, int, error) {
	if visitor.Token == "" {
		return ResultNoCookie, 0, ErrMissingCookie
	}

	if err := s.cfg.Validate(); err != nil {
		s.debug(err)
		return ResultMissingConfig, 0, err
	}

	clean := visitor.Sanitized()
	if clean.Token == "" {
		return ResultNoCookie, 0, ErrMissingCookie
	}

	req, err := s.NewSignedRequest(clean, pageURL)
	if err != nil {
		s.debug(err)
		return ResultBuildFailure, 0, err
	}

	status, err := s.send(ctx, req)
	if err != nil {
		s.debug(err)
		return ResultTransportFailure, status, err
	}
	return ResultSent, status, nil
}

// NewSignedRequest builds and signs the import call for an already
// sanitized visitor.
func (s *Submitter) NewSignedRequest(visitor Visitor, pageURL string) (*SignedRequest, error) {
	body, err := EncodePayload(BuildPayload(s.cfg.Channel, visitor, pageURL))
	if err != nil {
		return nil, err
	}
	return signRequest(s.cfg, body, s.now()), nil
}

func (s *Submitter) send(ctx context.Context, sr *SignedRequest) (int, error) {
	req, err := http.NewRequestWithContext(ctx, sr.Method, sr.URL, bytes.NewReader(sr.Body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", sr.Authorization)
	req.Header.Set("Date", sr.Date)
	// Sent with this exact spelling, Set would canonicalize it to Content-Md5.
	req.Header["Content-md5"] = []string{sr.ContentMD5}
	req.Header.Set("Content-Type", sr.ContentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post import: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("post import: HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read import response: %w", err)
	}

	// The response content is not used.
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.debug(fmt.Errorf("decode import response: %w", err))
	}
	return resp.StatusCode, nil
}

// debug logs err at warn level when tracking.debug is on, whatever the
// configured log level.
func (s *Submitter) debug(err error) {
	if !s.cfg.Debug {
		return
	}
	if errors.Is(err, ErrMissingConfig) {
		log.Warn().Err(err).Msg("page browse tracking disabled")
		return
	}
	log.Warn().Err(err).Msg("page browse tracking failed")
}
