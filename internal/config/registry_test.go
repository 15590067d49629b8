package config

import (
	"testing"
)

const testRegistry = `{
  "v0": {
    "k8s": {
      "services": {
        "osm-powerdns": {"ip": ["10.1.1.1", "10.1.1.2"], "ports": {"api": {"port": 8082}, "dns": {"port": 53}}},
        "osm-powerdns-admin": {"ip": ["10.1.1.9"], "ports": {"http": {"port": 80}}},
        "osm-nbi": {"ip": ["10.2.2.2"], "ports": {"api": {"port": 9999}}},
        "noip": {"ip": [], "ports": {}}
      }
    }
  }
}`

func TestParseServiceRegistry(t *testing.T) {
	reg, err := ParseServiceRegistry([]byte(testRegistry))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reg.Names()) != 4 {
		t.Fatalf("expected 4 services, got %d", len(reg.Names()))
	}
}

func TestParseServiceRegistry_Invalid(t *testing.T) {
	if _, err := ParseServiceRegistry([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestResolve(t *testing.T) {
	reg, err := ParseServiceRegistry([]byte(testRegistry))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		service  string
		portName string
		want     ServerEndpoint
		wantErr  bool
	}{
		{"powerdns", "api", ServerEndpoint{"10.1.1.1", 8082}, false},       // first match by name order
		{"powerdns-admin", "api", ServerEndpoint{"10.1.1.9", 8081}, false}, // port falls back to default
		{"nbi", "api", ServerEndpoint{"10.2.2.2", 9999}, false},
		{"powerdns", "dns", ServerEndpoint{"10.1.1.1", 53}, false},
		{"noip", "api", ServerEndpoint{}, true},
		{"missing", "api", ServerEndpoint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.service+"/"+tt.portName, func(t *testing.T) {
			got, err := reg.Resolve(tt.service, tt.portName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q, %q): err=%v, wantErr=%v", tt.service, tt.portName, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %+v, want %+v", tt.service, tt.portName, got, tt.want)
			}
		})
	}
}

func TestLookupService_Substring(t *testing.T) {
	reg, err := ParseServiceRegistry([]byte(testRegistry))
	if err != nil {
		t.Fatal(err)
	}
	svc, err := reg.LookupService("admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Name != "osm-powerdns-admin" {
		t.Errorf("expected 'osm-powerdns-admin', got %q", svc.Name)
	}
}
