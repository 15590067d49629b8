package powerdns

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/dns"
)

func init() {
	dns.Register("powerdns", func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
}

// apiKeyHeader carries the static API key on every request.
const apiKeyHeader = "X-API-Key"

// Client implements dns.Provider against the PowerDNS HTTP API. It is
// immutable once built and keeps no state between calls.
type Client struct {
	zonesURL string
	apiKey   string
	client   *http.Client
	log      logr.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from the settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// New creates a PowerDNS client from the given settings map.
// Required settings: base_url (the zones collection URL), api_key.
// Optional settings: skip_tls_verify (default false).
func New(log logr.Logger, settings map[string]string, opts ...Option) (*Client, error) {
	zonesURL := settings["base_url"]
	if zonesURL == "" {
		return nil, fmt.Errorf("powerdns: missing required setting 'base_url'")
	}
	apiKey := settings["api_key"]
	if apiKey == "" {
		return nil, fmt.Errorf("powerdns: missing required setting 'api_key'")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if v := settings["skip_tls_verify"]; v == "true" {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &Client{
		zonesURL: zonesURL,
		apiKey:   apiKey,
		client:   &http.Client{Transport: transport},
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the zones collection URL the client is bound to.
func (c *Client) URL() string {
	return c.zonesURL
}

// call describes a single request/response exchange.
type call struct {
	op      string // human-readable operation name used in errors
	kind    dns.ErrorKind
	method  string
	url     string
	body    interface{}
	success int
}

// do executes one exchange and converts the outcome into a Result or an
// *dns.OperationError.
func (c *Client) do(ctx context.Context, cl call) (dns.Result, error) {
	var bodyReader io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return dns.Result{}, c.transportError(cl, fmt.Errorf("marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url, bodyReader)
	if err != nil {
		return dns.Result{}, c.transportError(cl, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return dns.Result{}, c.transportError(cl, fmt.Errorf("%s %s: %w", cl.method, cl.url, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return dns.Result{}, c.transportError(cl, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != cl.success {
		c.log.Error(nil, "unexpected status from PowerDNS", "op", cl.op, "status", resp.StatusCode, "body", string(respBody))
		return dns.Result{}, &dns.OperationError{
			Kind:       cl.kind,
			Op:         cl.op,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}
	return dns.Result{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}

func (c *Client) transportError(cl call, err error) error {
	c.log.Error(err, "PowerDNS request failed", "op", cl.op, "method", cl.method, "url", cl.url)
	return &dns.OperationError{Kind: dns.TransportError, Op: cl.op, Err: err}
}

// CreateZone registers a Native zone with a single nameserver.<zone> entry.
func (c *Client) CreateZone(ctx context.Context, zone string) (dns.Result, error) {
	c.log.V(1).Info("creating zone", "zone", zone)
	res, err := c.do(ctx, call{
		op:      "Add zone",
		kind:    dns.ZoneError,
		method:  http.MethodPost,
		url:     c.zonesURL,
		body:    newCreateZoneRequest(zone),
		success: http.StatusCreated,
	})
	if err != nil {
		return res, err
	}
	c.log.Info("added zone", "zone", zone)
	return res, nil
}

// DeleteZone removes a zone and all of its records.
func (c *Client) DeleteZone(ctx context.Context, zone string) (dns.Result, error) {
	c.log.V(1).Info("deleting zone", "zone", zone)
	res, err := c.do(ctx, call{
		op:      "Delete zone",
		kind:    dns.ZoneError,
		method:  http.MethodDelete,
		url:     dns.ZoneURL(c.zonesURL, zone),
		success: http.StatusNoContent,
	})
	if err != nil {
		return res, err
	}
	c.log.Info("deleted zone", "zone", zone)
	return res, nil
}

// UpsertRecord replaces the A RRset ownerName+zone with a single record
// pointing at ip.
func (c *Client) UpsertRecord(ctx context.Context, zone, ownerName, ip string) (dns.Result, error) {
	rec := dns.RecordSpec{
		Zone:      dns.ZoneSpec{Name: zone},
		OwnerName: ownerName,
		Type:      dns.RecordTypeA,
		TTL:       dns.DefaultTTL,
		TargetIP:  ip,
	}
	c.log.V(1).Info("upserting record", "name", rec.FQDN(), "ip", ip)
	res, err := c.do(ctx, call{
		op:      "Add domain",
		kind:    dns.DomainError,
		method:  http.MethodPatch,
		url:     dns.ZoneURL(c.zonesURL, zone),
		body:    newReplacePatch(rec),
		success: http.StatusNoContent,
	})
	if err != nil {
		return res, err
	}
	c.log.Info("added record", "name", rec.FQDN(), "ip", ip)
	return res, nil
}

// DeleteRecord removes the A RRset ownerName+zone.
func (c *Client) DeleteRecord(ctx context.Context, zone, ownerName string) (dns.Result, error) {
	rec := dns.RecordSpec{
		Zone:      dns.ZoneSpec{Name: zone},
		OwnerName: ownerName,
		Type:      dns.RecordTypeA,
	}
	c.log.V(1).Info("deleting record", "name", rec.FQDN())
	res, err := c.do(ctx, call{
		op:      "Delete domain",
		kind:    dns.DomainError,
		method:  http.MethodPatch,
		url:     dns.ZoneURL(c.zonesURL, zone),
		body:    newDeletePatch(rec),
		success: http.StatusNoContent,
	})
	if err != nil {
		return res, err
	}
	c.log.Info("deleted record", "name", rec.FQDN(), "zone", zone)
	return res, nil
}
