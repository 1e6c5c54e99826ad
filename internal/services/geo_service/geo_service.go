package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/metrics"

	"github.com/patrickmn/go-cache"
)

const (
	UnknownCountry  = "Unknown"
	defaultLanguage = "en"
)

var ErrCountryFetch = errors.New("country fetch error")

type reverseGeocodeResponse struct {
	CountryName string `json:"countryName"`
}

// GeoService resolves coordinates to a country name through an external reverse geocoding API.
type GeoService struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
	cache   *cache.Cache
}

func NewGeoService(log *slog.Logger, baseURL string, timeout, cacheTTL time.Duration) *GeoService {
	return &GeoService{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
	}
}

// Country returns the trimmed country name for the position, or UnknownCountry
// when the service does not identify one.
func (s *GeoService) Country(ctx context.Context, latitude, longitude float64) (string, error) {
	const op = "geo_service.Country"

	log := s.log.With(
		slog.String("op", op),
		slog.Float64("latitude", latitude),
		slog.Float64("longitude", longitude),
	)

	key := cacheKey(latitude, longitude)
	if country, ok := s.cache.Get(key); ok {
		metrics.GeocoderRequests.WithLabelValues("hit").Inc()
		return country.(string), nil
	}

	country, err := s.fetch(ctx, latitude, longitude)
	if err != nil {
		metrics.GeocoderRequests.WithLabelValues("error").Inc()
		log.Error("reverse geocoding failed", sl.Err(err))

		return "", fmt.Errorf("%s: %w: %w", op, ErrCountryFetch, err)
	}

	metrics.GeocoderRequests.WithLabelValues("miss").Inc()
	s.cache.SetDefault(key, country)

	log.Debug("country resolved", slog.String("country", country))

	return country, nil
}

func (s *GeoService) fetch(ctx context.Context, latitude, longitude float64) (string, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	query.Set("localityLanguage", defaultLanguage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body reverseGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	country := strings.TrimSpace(body.CountryName)
	if country == "" {
		return UnknownCountry, nil
	}

	return country, nil
}

// ~11m at the equator
func cacheKey(latitude, longitude float64) string {
	return fmt.Sprintf("%.4f,%.4f", latitude, longitude)
}
