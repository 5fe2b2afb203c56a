package holidayprovider

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"ohours"
	appLog "ohours/internal/log"
)

type remoteHoliday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type cacheEntry struct {
	ETag      string    `json:"etag,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemoteProvider serves public holidays from an HTTP API, honoring ETag
// caching and retrying transient failures with exponential backoff
// (adapted from the teacher's ICS fetcher; see internal/ics/fetch.go).
type RemoteProvider struct {
	baseURL  string
	cacheDir string
	client   *http.Client
}

// NewRemote constructs a RemoteProvider. baseURL is expected to expose
// GET {baseURL}/{region}/{year} returning a JSON array of
// {"date":"YYYY-MM-DD","name":"..."} entries.
func NewRemote(baseURL, cacheDir string) *RemoteProvider {
	return &RemoteProvider{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// PublicHolidays implements ohours.HolidayProvider.
func (p *RemoteProvider) PublicHolidays(region string, year int) ([]ohours.Holiday, error) {
	cachePath, err := p.cachePathFor(region, year)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating holiday cache dir")
	}

	meta, _ := p.loadMeta(cachePath)
	cachedBody, _ := p.loadBody(cachePath)

	var result []ohours.Holiday

	op := func() error {
		url := fmt.Sprintf("%s/%s/%d", p.baseURL, region, year)
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return err // network errors are retryable
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			body, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return readErr
			}
			holidays, parseErr := decodeHolidays(body)
			if parseErr != nil {
				return backoff.Permanent(parseErr)
			}
			if saveErr := p.saveCache(cachePath, cacheEntry{ETag: resp.Header.Get("ETag"), UpdatedAt: time.Now().UTC()}, body); saveErr != nil {
				appLog.Error("holiday cache save failed", saveErr, "region", region, "year", year)
			}
			result = holidays
			return nil

		case http.StatusNotModified:
			if len(cachedBody) == 0 {
				return backoff.Permanent(errors.New("received 304 but no cached body available"))
			}
			holidays, parseErr := decodeHolidays(cachedBody)
			if parseErr != nil {
				return backoff.Permanent(parseErr)
			}
			result = holidays
			return nil

		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return errors.Errorf("retryable status %d from holiday API", resp.StatusCode)

		default:
			return backoff.Permanent(errors.Errorf("unexpected status %d from holiday API", resp.StatusCode))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return result, nil
}

func decodeHolidays(body []byte) ([]ohours.Holiday, error) {
	var entries []remoteHoliday
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, errors.Wrap(err, "decoding holiday response")
	}
	holidays := make([]ohours.Holiday, 0, len(entries))
	for _, e := range entries {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing date %q", e.Date)
		}
		holidays = append(holidays, ohours.Holiday{Date: d, Name: e.Name})
	}
	return holidays, nil
}

func (p *RemoteProvider) cachePathFor(region string, year int) (string, error) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", region, year)))
	dir := hex.EncodeToString(sum[:8])
	return filepath.Join(p.cacheDir, dir), nil
}

func (p *RemoteProvider) loadMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (p *RemoteProvider) loadBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.json"))
}

func (p *RemoteProvider) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
