package dns

import (
	"context"
	"strconv"
)

const (
	// RecordTypeA is the only record type managed by the operator.
	RecordTypeA = "A"

	// DefaultTTL is applied to every record created through UpsertRecord.
	DefaultTTL = 86400
)

// ZoneSpec identifies a zone on the DNS server, e.g. "example.com.".
// The server is authoritative for its validity.
type ZoneSpec struct {
	Name string
}

// RecordSpec describes an A record inside a zone.
type RecordSpec struct {
	Zone      ZoneSpec
	OwnerName string // left-hand part, e.g. "www."
	Type      string // always "A"
	TTL       int
	TargetIP  string // empty for deletes
}

// FQDN returns the fully-qualified record name. The owner name and the
// zone name are concatenated as-is, so callers must supply the trailing
// dot on OwnerName themselves ("www." + "example.com.").
func (r RecordSpec) FQDN() string {
	return r.OwnerName + r.Zone.Name
}

// Result is the outcome of a successful API call.
type Result struct {
	StatusCode int
	Body       string
}

// String renders the result as "<status>:<body>".
func (r Result) String() string {
	return strconv.Itoa(r.StatusCode) + ":" + r.Body
}

// Provider is the interface a DNS server API client must implement. Every
// method issues exactly one request against the server.
type Provider interface {
	CreateZone(ctx context.Context, zone string) (Result, error)
	DeleteZone(ctx context.Context, zone string) (Result, error)
	UpsertRecord(ctx context.Context, zone, ownerName, ip string) (Result, error)
	DeleteRecord(ctx context.Context, zone, ownerName string) (Result, error)
}
