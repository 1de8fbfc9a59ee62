package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/linksleuth/linksleuth/internal/model"
)

// geoResponse is the subset of the geolocation API response we consume.
type geoResponse struct {
	CountryName string `json:"country_name"`
	Org         string `json:"org"`
	ASN         string `json:"asn"`
}

// lookupIP resolves the hostname and queries the geolocation/ASN service.
// Resolution failure yields IPInfo with only Err set; a failed geolocation
// lookup after successful resolution yields a partial IPInfo carrying just
// the address and the error.
func (i *Inspector) lookupIP(ctx context.Context, hostname string) *model.IPInfo {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupHost(ctx, hostname)
	if err != nil || len(addrs) == 0 {
		if err == nil {
			err = fmt.Errorf("no addresses for %s", hostname)
		}
		i.logger.Debug("hostname resolution failed", "hostname", hostname, "error", err)
		return &model.IPInfo{Err: err.Error()}
	}
	ip := addrs[0]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s/json/", i.geoBaseURL, ip), nil)
	if err != nil {
		return &model.IPInfo{IP: ip, Err: err.Error()}
	}

	resp, err := i.client.Do(req)
	if err != nil {
		i.logger.Debug("geolocation lookup failed", "ip", ip, "error", err)
		return &model.IPInfo{IP: ip, Err: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return &model.IPInfo{IP: ip, Err: fmt.Sprintf("geolocation lookup returned HTTP %d", resp.StatusCode)}
	}

	var geo geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return &model.IPInfo{IP: ip, Err: fmt.Sprintf("decode geolocation response: %v", err)}
	}

	return &model.IPInfo{
		IP:      ip,
		Country: geo.CountryName,
		Org:     geo.Org,
		ASN:     geo.ASN,
	}
}
