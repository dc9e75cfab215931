package api

import (
	"context"
	"encoding/json"
	"fmt"

	"premier-tracker/internal/config"
	"premier-tracker/internal/constants"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

// FootballDataClient talks to the football-data.org v4 API. All calls
// are bounded by the caller's context plus a finite retry budget; a
// failed call surfaces as an error, never a hang.
type FootballDataClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

func NewFootballDataClient(cfg *config.Config) *FootballDataClient {
	return &FootballDataClient{
		apiKey:  cfg.FootballAPIKey,
		baseURL: cfg.FootballAPIBase,
		client: &fasthttp.Client{
			MaxConnsPerHost: 10,
			ReadTimeout:     constants.ExternalAPITimeout,
			WriteTimeout:    constants.ExternalAPITimeout,
		},
	}
}

func (c *FootballDataClient) GetMatches(ctx context.Context, competition string) (*MatchesResponse, error) {
	url := fmt.Sprintf("%s/competitions/%s/matches", c.baseURL, competition)
	return doRequest[MatchesResponse](ctx, c, url)
}

func (c *FootballDataClient) GetStandings(ctx context.Context, competition string) (*StandingsResponse, error) {
	url := fmt.Sprintf("%s/competitions/%s/standings", c.baseURL, competition)
	return doRequest[StandingsResponse](ctx, c, url)
}

func doRequest[T any](ctx context.Context, client *FootballDataClient, url string) (*T, error) {
	var result T

	backoff := retry.WithMaxRetries(constants.APIMaxRetries, retry.NewConstant(constants.APIRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("X-Auth-Token", client.apiKey)

		if deadline, ok := ctx.Deadline(); ok {
			if err := client.client.DoDeadline(req, resp, deadline); err != nil {
				return retry.RetryableError(err)
			}
		} else {
			if err := client.client.Do(req, resp); err != nil {
				return retry.RetryableError(err)
			}
		}

		switch code := resp.StatusCode(); {
		case code == fasthttp.StatusOK:
		case code == fasthttp.StatusTooManyRequests || code >= 500:
			return retry.RetryableError(fmt.Errorf("API error: %d", code))
		default:
			return fmt.Errorf("API error: %d", code)
		}

		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type MatchesResponse struct {
	Count   int        `json:"count"`
	Matches []RawMatch `json:"matches"`
}

// RawMatch is the per-match shape returned by the API. Team and season
// fields may be absent for malformed records; ingestion validates.
type RawMatch struct {
	ID       int64     `json:"id"`
	UTCDate  string    `json:"utcDate"`
	Status   string    `json:"status"`
	Season   RawSeason `json:"season"`
	HomeTeam RawTeam   `json:"homeTeam"`
	AwayTeam RawTeam   `json:"awayTeam"`
	Score    RawScore  `json:"score"`
}

type RawSeason struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type RawTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	TLA  string `json:"tla"`
}

type RawScore struct {
	Winner   string `json:"winner"`
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}

type StandingsResponse struct {
	Standings []RawStanding `json:"standings"`
}

type RawStanding struct {
	Type  string            `json:"type"`
	Table []RawStandingsRow `json:"table"`
}

type RawStandingsRow struct {
	Position int     `json:"position"`
	Team     RawTeam `json:"team"`
}
