package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/linksleuth/linksleuth/internal/model"
)

// Freshness tier boundaries in days since registration.
const (
	freshnessNewDays   = 90
	freshnessYoungDays = 365
)

// rdapResponse is the subset of an RDAP domain record we consume.
type rdapResponse struct {
	Events []struct {
		EventAction string `json:"eventAction"`
		EventDate   string `json:"eventDate"`
	} `json:"events"`
	Entities []struct {
		Roles      []string `json:"roles"`
		VCardArray []any    `json:"vcardArray"`
	} `json:"entities"`
}

// lookupWhois queries the RDAP service for the domain's registration record
// and derives the age-based freshness tier. Missing data yields an explicit
// FreshnessUndetermined tier, never a silent default to established.
func (i *Inspector) lookupWhois(ctx context.Context, domain string) *model.WhoisInfo {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/domain/%s", i.rdapBaseURL, domain), nil)
	if err != nil {
		return &model.WhoisInfo{Err: err.Error()}
	}

	resp, err := i.client.Do(req)
	if err != nil {
		i.logger.Debug("RDAP lookup failed", "domain", domain, "error", err)
		return &model.WhoisInfo{Err: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return &model.WhoisInfo{Err: fmt.Sprintf("RDAP lookup returned HTTP %d", resp.StatusCode)}
	}

	var record rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return &model.WhoisInfo{Err: fmt.Sprintf("decode RDAP response: %v", err)}
	}

	info := &model.WhoisInfo{
		Registrar: registrarName(record),
		Freshness: model.FreshnessUndetermined,
	}

	var created, expires time.Time
	for _, e := range record.Events {
		t, err := time.Parse(time.RFC3339, e.EventDate)
		if err != nil {
			continue
		}
		switch e.EventAction {
		case "registration":
			created = t
		case "expiration":
			expires = t
		}
	}

	if !created.IsZero() {
		info.Created = created.UTC().Format(time.RFC3339)
		info.AgeDays = int(time.Since(created).Hours() / 24)
		info.AgeYears = info.AgeDays / 365
		info.Freshness = FreshnessTier(info.AgeDays)
	}
	if !expires.IsZero() {
		info.Expires = expires.UTC().Format(time.RFC3339)
	}

	return info
}

// FreshnessTier buckets a registration age in days.
func FreshnessTier(ageDays int) model.FreshnessTier {
	switch {
	case ageDays < freshnessNewDays:
		return model.FreshnessNew
	case ageDays < freshnessYoungDays:
		return model.FreshnessYoung
	default:
		return model.FreshnessEstablished
	}
}

// registrarName extracts the registrar's name from the RDAP entities.
// RDAP vCard arrays are deeply nested; anything unexpected degrades to an
// empty name rather than an error.
func registrarName(record rdapResponse) string {
	for _, entity := range record.Entities {
		isRegistrar := false
		for _, role := range entity.Roles {
			if role == "registrar" {
				isRegistrar = true
				break
			}
		}
		if !isRegistrar {
			continue
		}

		// vcardArray is ["vcard", [["fn", {}, "text", "Registrar Inc."], ...]]
		if len(entity.VCardArray) < 2 {
			continue
		}
		fields, ok := entity.VCardArray[1].([]any)
		if !ok {
			continue
		}
		for _, f := range fields {
			parts, ok := f.([]any)
			if !ok || len(parts) < 4 {
				continue
			}
			if name, ok := parts[0].(string); !ok || name != "fn" {
				continue
			}
			if value, ok := parts[3].(string); ok {
				return value
			}
		}
	}
	return ""
}
