package dns

import (
	"net"
	"strconv"
	"strings"
)

// ZonesPath is the PowerDNS zones collection of the built-in "localhost" server.
const ZonesPath = "/api/v1/servers/localhost/zones"

// ZonesURL builds the zones collection URL for a server endpoint.
// e.g. ("10.1.1.1", 8081) → "http://10.1.1.1:8081/api/v1/servers/localhost/zones"
func ZonesURL(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + ZonesPath
}

// ZoneURL returns the URL of a single zone below the zones collection.
func ZoneURL(zonesURL, zone string) string {
	return strings.TrimRight(zonesURL, "/") + "/" + zone
}
