package opendata

import (
	"aed-location-service/internal/domain"
	"aed-location-service/internal/platform/obs"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// DefaultURL is the Asahikawa city AED installation list.
const DefaultURL = "https://www.city.asahikawa.hokkaido.jp/kurashi/311/316/d053328_d/fil/012041_aed_location.csv"

const columnCount = 10

// Client downloads and parses the AED open-data CSV.
// It performs a single attempt per Fetch; retrying is left to the caller.
type Client struct {
	session *http.Client
	url     string
}

func NewClient(url string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("open data client: url is empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		session: &http.Client{Timeout: timeout},
		url:     url,
	}, nil
}

// Fetch returns one LocationInput per data row, in file order.
// Every failure is a *domain.ScrapeError.
func (c *Client) Fetch(ctx context.Context) (_ []domain.LocationInput, err error) {
	defer obs.Time(ctx, "opendata.Fetch")(&err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.ScrapeError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.session.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", c.url).Msg("open data download failed")
		return nil, &domain.ScrapeError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("unexpected status: %d", resp.StatusCode)
		log.Error().Int("status", resp.StatusCode).Str("url", c.url).Msg("open data download failed")
		return nil, &domain.ScrapeError{Message: msg}
	}
	log.Info().Str("url", c.url).Msg("open data downloaded")

	rows, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Parse decodes a Shift_JIS (CP932) CSV with a header row into location inputs.
func Parse(r io.Reader) ([]domain.LocationInput, error) {
	reader := csv.NewReader(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.LocationInput{}, nil
		}
		return nil, &domain.ScrapeError{Message: fmt.Sprintf("read header: %v", err), Err: err}
	}

	out := make([]domain.LocationInput, 0, 512)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.ScrapeError{Message: fmt.Sprintf("read line %d: %v", line, err), Err: err}
		}
		if isBlank(record) {
			continue
		}

		in, err := toInput(record)
		if err != nil {
			return nil, &domain.ScrapeError{Message: fmt.Sprintf("line %d: %v", line, err), Err: err}
		}
		out = append(out, in)
	}

	return out, nil
}

func toInput(record []string) (domain.LocationInput, error) {
	// Missing trailing cells are treated as empty strings.
	cells := make([]string, columnCount)
	copy(cells, record)

	id, err := strconv.Atoi(strings.TrimSpace(cells[1]))
	if err != nil {
		return domain.LocationInput{}, fmt.Errorf("location_id %q: %w", cells[1], err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(cells[8]), 64)
	if err != nil {
		return domain.LocationInput{}, fmt.Errorf("latitude %q: %w", cells[8], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(cells[9]), 64)
	if err != nil {
		return domain.LocationInput{}, fmt.Errorf("longitude %q: %w", cells[9], err)
	}

	return domain.LocationInput{
		Area:          cells[0],
		LocationID:    id,
		Name:          cells[2],
		PostalCode:    cells[3],
		Address:       cells[4],
		PhoneNumber:   cells[5],
		AvailableTime: cells[6],
		Floor:         cells[7],
		Latitude:      lat,
		Longitude:     lon,
	}, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
