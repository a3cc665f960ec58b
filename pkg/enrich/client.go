// Package enrich queries an optional secondary company-data API. Results
// only ever fill fields the scrape left empty; scraped values always win.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/extract"
	"liscraper/pkg/logger"
	"liscraper/pkg/retry"
)

// Client talks to the secondary structured-data source
type Client struct {
	http     *resty.Client
	retryCfg *retry.Config
	logger   logger.Logger
}

// NewClient creates an enrichment client from configuration
func NewClient(cfg config.EnrichmentConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{
		http: httpClient,
		retryCfg: &retry.Config{
			MaxAttempts: 3,
			Backoff:     retry.DefaultExponentialBackoff(),
			BackoffFor:  retry.NewErrorTypeBackoff().ForError,
			RetryIf:     retry.DefaultRetryIf,
			Logger:      log,
		},
		logger: log,
	}
}

// companyRecord is the secondary source's company document
type companyRecord struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Industry      string   `json:"industry"`
	Location      string   `json:"location"`
	Website       string   `json:"website"`
	LogoURL       string   `json:"logo_url"`
	HeadCount     string   `json:"employee_range"`
	CompanyType   string   `json:"company_type"`
	FoundedYear   int      `json:"founded_year"`
	FollowerCount int      `json:"follower_count"`
	Specialties   []string `json:"specialties"`
}

// Lookup fetches the secondary record for a company and maps it into a
// profile partial. A missing record is not an error; it returns nil.
func (c *Client) Lookup(ctx context.Context, externalID string) (*extract.ProfilePartial, error) {
	var record companyRecord
	var status int

	cfg := *c.retryCfg
	cfg.Context = ctx
	err := retry.Do(func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&record).
			Get(fmt.Sprintf("/companies/%s", externalID))
		if err != nil {
			return errs.Newf(errs.ErrorTypeNetwork, "enrichment request: %v", err)
		}
		status = resp.StatusCode()
		return c.checkStatus(resp)
	}, &cfg)
	if err != nil {
		var typed *errs.Error
		if errors.As(err, &typed) && typed.Type == errs.ErrorTypeNotFound {
			c.logger.WithField("company", externalID).Debug("no enrichment record")
			return nil, nil
		}
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"company": externalID,
		"status":  status,
	}).Debug("enrichment record fetched")

	return recordToPartial(record), nil
}

// checkStatus maps response codes onto the shared error taxonomy
func (c *Client) checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusOK:
		return nil
	case resp.StatusCode() == http.StatusUnauthorized, resp.StatusCode() == http.StatusForbidden:
		return &errs.Error{Type: errs.ErrorTypeAuth, Message: "enrichment credentials rejected", Code: resp.StatusCode()}
	case resp.StatusCode() == http.StatusNotFound:
		return &errs.Error{Type: errs.ErrorTypeNotFound, Message: "company not in enrichment source", Code: resp.StatusCode()}
	case resp.StatusCode() == http.StatusTooManyRequests:
		return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: "enrichment rate limit exceeded", Code: resp.StatusCode()}
	case resp.StatusCode() >= 500:
		return &errs.Error{Type: errs.ErrorTypeServerError, Message: "enrichment server error", Code: resp.StatusCode()}
	default:
		return &errs.Error{Type: errs.ErrorTypeUnknown, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode()), Code: resp.StatusCode()}
	}
}

func recordToPartial(record companyRecord) *extract.ProfilePartial {
	partial := &extract.ProfilePartial{Specialties: record.Specialties}
	if record.Name != "" {
		partial.Name = &record.Name
	}
	if record.Description != "" {
		partial.Description = &record.Description
	}
	if record.Industry != "" {
		partial.Industry = &record.Industry
	}
	if record.Location != "" {
		partial.Location = &record.Location
	}
	if record.Website != "" {
		partial.Website = &record.Website
	}
	if record.LogoURL != "" {
		partial.LogoURL = &record.LogoURL
	}
	if record.HeadCount != "" {
		partial.HeadCount = &record.HeadCount
	}
	if record.CompanyType != "" {
		partial.CompanyType = &record.CompanyType
	}
	if record.FoundedYear > 0 {
		partial.FoundedYear = &record.FoundedYear
	}
	if record.FollowerCount > 0 {
		partial.FollowerCount = &record.FollowerCount
	}
	return partial
}
