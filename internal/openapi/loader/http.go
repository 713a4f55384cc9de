package loader

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	pkgopenapi "github.com/goliatone/go-agentsite/pkg/openapi"
)

func newRestClient(options pkgopenapi.LoaderOptions) *resty.Client {
	var rest *resty.Client
	if options.HTTPClient != nil {
		rest = resty.NewWithClient(options.HTTPClient)
	} else {
		rest = resty.New()
	}
	rest.SetHeader("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	if options.Timeout > 0 {
		rest.SetTimeout(options.Timeout)
	}
	rest.SetHeaders(options.Headers)
	return rest
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := l.rest.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("openapi loader: fetch %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("openapi loader: fetch %s: unexpected status %s", url, resp.Status())
	}
	return readLimited(body, url, l.maxBytes)
}
