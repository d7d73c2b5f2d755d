package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/i474232898/danish-weather/internal/common"
	"github.com/i474232898/danish-weather/internal/fetch"
	"github.com/i474232898/danish-weather/internal/weather"
)

// DefaultLocationName is used when no display name was resolved for the coordinate.
const DefaultLocationName = "Location"

const proxyPath = "/api/weather"

var errInvalidEnvelope = errors.New("proxy response is not valid JSON")

// Fetcher is the retrying GET both adapters share.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Namer resolves the display name of a coordinate.
type Namer interface {
	Name(ctx context.Context, coord weather.Coordinate) string
}

// Options are shared by both adapter constructors.
type Options struct {
	// ProxyBaseURL is where the upstream proxy is served, e.g. http://127.0.0.1:8080.
	ProxyBaseURL string
	// LocationName is used when Names is nil or has no name for a coordinate.
	LocationName string
	Names        Namer
	// Now stamps lastUpdated. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	o.ProxyBaseURL = strings.TrimRight(o.ProxyBaseURL, "/")
	if o.LocationName == "" {
		o.LocationName = DefaultLocationName
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) locationName(ctx context.Context, coord weather.Coordinate) string {
	if o.Names != nil {
		if name := o.Names.Name(ctx, coord); name != "" {
			return name
		}
	}
	return o.LocationName
}

func proxyURL(base string, coord weather.Coordinate) string {
	values := url.Values{}
	values.Set("latitude", common.FormatDegrees(coord.Latitude))
	values.Set("longitude", common.FormatDegrees(coord.Longitude))
	return fmt.Sprintf("%s%s?%s", base, proxyPath, values.Encode())
}

// envelope is one provider's entry in the proxy response.
type envelope struct {
	payload gjson.Result
	// upstream is the error the proxy reported for this provider, nil if none.
	upstream error
}

// fetchPayload calls the proxy and returns the entry stored under key.
// A missing or null payload comes back as a non-existent result.
func fetchPayload(ctx context.Context, client Fetcher, base, key string, coord weather.Coordinate) (envelope, error) {
	if client == nil {
		return envelope{}, networkError(key, errors.New("fetch client not configured"))
	}

	resp, err := client.Get(ctx, proxyURL(base, coord))
	if err != nil {
		return envelope{}, networkError(key, err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return envelope{}, &weather.AdapterError{
			Provider: key,
			Kind:     weather.KindStructural,
			Err:      errInvalidEnvelope,
		}
	}

	env := envelope{payload: gjson.GetBytes(resp.Body, key)}
	if msg := text(gjson.GetBytes(resp.Body, "errors."+key)); msg != nil && *msg != "" {
		env.upstream = errors.New(*msg)
	}
	return env, nil
}

func locationID(provider string, coord weather.Coordinate) string {
	return fmt.Sprintf("%s-%s-%s", provider,
		common.FormatDegrees(coord.Latitude),
		common.FormatDegrees(coord.Longitude))
}

// number returns nil unless r holds a JSON number.
func number(r gjson.Result) *float64 {
	if r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}

func text(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := r.String()
	return &s
}

func networkError(provider string, err error) error {
	return &weather.AdapterError{Provider: provider, Kind: weather.KindNetwork, Err: err}
}

// structuralError reports a missing path. cause is the upstream failure the
// proxy recorded for the provider, if any.
func structuralError(provider, msg string, cause error) error {
	return &weather.AdapterError{
		Provider: provider,
		Kind:     weather.KindStructural,
		Err:      &weather.StructuralError{Message: msg, Err: cause},
	}
}

// invalid tags a schema rejection with the stage that produced it.
func invalid(provider, prefix string, err error) error {
	var verr *weather.ValidationError
	if errors.As(err, &verr) {
		err = &weather.ValidationError{Prefix: prefix, Issues: verr.Issues}
	} else {
		err = fmt.Errorf("%s: %w", prefix, err)
	}
	return &weather.AdapterError{Provider: provider, Kind: weather.KindValidation, Err: err}
}
