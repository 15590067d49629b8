package action

// Action names accepted by the Dispatcher.
const (
	AddZone      = "add-zone"
	DeleteZone   = "delete-zone"
	AddDomain    = "add-domain"
	DeleteDomain = "delete-domain"
)

// Parameter names carried by action events.
const (
	ParamServiceName = "service_name"
	ParamZoneName    = "zone_name"
	ParamSubdomain   = "subdomain"
	ParamIP          = "ip"
)

// OutputKey is the results key holding "<status>:<body>".
const OutputKey = "output"

// Event is a single action invocation delivered by the host. Exactly one of
// SetResults or Fail is called per event.
type Event interface {
	Name() string
	Params() map[string]string
	SetResults(results map[string]string)
	Fail(message string)
}

// Names returns the supported action names.
func Names() []string {
	return []string{AddZone, DeleteZone, AddDomain, DeleteDomain}
}
