package powerdns

import "github.com/yuriy-kovalchuk/yk-pdns-operator/internal/dns"

const (
	changeTypeReplace = "REPLACE"
	changeTypeDelete  = "DELETE"
)

// createZoneRequest is the POST body for the zones collection.
// Masters is always sent, even when empty.
type createZoneRequest struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Masters     []string `json:"masters"`
	Nameservers []string `json:"nameservers"`
}

// patchRequest is the PATCH body for a single zone.
type patchRequest struct {
	RRSets []rrset `json:"rrsets"`
}

// rrset is one entry of a PATCH. TTL and Records are omitted for DELETE.
type rrset struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	TTL        int      `json:"ttl,omitempty"`
	ChangeType string   `json:"changetype"`
	Records    []record `json:"records,omitempty"`
}

type record struct {
	Content string `json:"content"`
}

func newCreateZoneRequest(zone string) createZoneRequest {
	return createZoneRequest{
		Name:        zone,
		Kind:        "Native",
		Masters:     []string{},
		Nameservers: []string{"nameserver." + zone},
	}
}

func newReplacePatch(rec dns.RecordSpec) patchRequest {
	return patchRequest{RRSets: []rrset{{
		Name:       rec.FQDN(),
		Type:       rec.Type,
		TTL:        rec.TTL,
		ChangeType: changeTypeReplace,
		Records:    []record{{Content: rec.TargetIP}},
	}}}
}

func newDeletePatch(rec dns.RecordSpec) patchRequest {
	return patchRequest{RRSets: []rrset{{
		Name:       rec.FQDN(),
		Type:       rec.Type,
		ChangeType: changeTypeDelete,
	}}}
}
