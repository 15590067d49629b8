package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/config"
	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/dns"
	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/status"
)

// ProviderFactory builds a DNS provider by name, see dns.NewProvider.
type ProviderFactory func(name string, log logr.Logger, settings map[string]string) (dns.Provider, error)

// request is the validated form of an event's parameters.
type request struct {
	ServiceName string
	Record      dns.RecordSpec // Zone is always set; the rest only for domain actions
}

// handler binds an action to one provider call.
type handler struct {
	required []string
	failure  string
	call     func(ctx context.Context, p dns.Provider, req request) (dns.Result, error)
}

var handlers = map[string]handler{
	AddZone: {
		required: []string{ParamZoneName},
		failure:  "Failed to add zone",
		call: func(ctx context.Context, p dns.Provider, req request) (dns.Result, error) {
			return p.CreateZone(ctx, req.Record.Zone.Name)
		},
	},
	DeleteZone: {
		required: []string{ParamZoneName},
		failure:  "Failed to delete zone",
		call: func(ctx context.Context, p dns.Provider, req request) (dns.Result, error) {
			return p.DeleteZone(ctx, req.Record.Zone.Name)
		},
	},
	AddDomain: {
		required: []string{ParamZoneName, ParamSubdomain, ParamIP},
		failure:  "Failed to add domain",
		call: func(ctx context.Context, p dns.Provider, req request) (dns.Result, error) {
			return p.UpsertRecord(ctx, req.Record.Zone.Name, req.Record.OwnerName, req.Record.TargetIP)
		},
	},
	DeleteDomain: {
		required: []string{ParamZoneName, ParamSubdomain},
		failure:  "Failed to delete domain",
		call: func(ctx context.Context, p dns.Provider, req request) (dns.Result, error) {
			return p.DeleteRecord(ctx, req.Record.Zone.Name, req.Record.OwnerName)
		},
	},
}

// Dispatcher maps action events to DNS provider calls. Events are handled
// one at a time.
type Dispatcher struct {
	log         logr.Logger
	cfg         *config.OperatorConfig
	source      config.Source
	unit        *status.Unit
	newProvider ProviderFactory

	mu sync.Mutex
}

// NewDispatcher creates a Dispatcher. The server endpoint is resolved from
// source on every event.
func NewDispatcher(log logr.Logger, cfg *config.OperatorConfig, source config.Source, unit *status.Unit) *Dispatcher {
	return &Dispatcher{
		log:         log,
		cfg:         cfg,
		source:      source,
		unit:        unit,
		newProvider: dns.NewProvider,
	}
}

// Dispatch runs the action named by ev and reports the outcome through
// ev.SetResults or ev.Fail. Failures never propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := ev.Name()
	log := d.log.WithValues("action", name)

	h, ok := handlers[name]
	if !ok {
		log.Info("rejecting unknown action")
		actionsTotal.WithLabelValues("unknown", outcomeFailure).Inc()
		ev.Fail(fmt.Sprintf("unknown action %q", name))
		return
	}

	log.Info("running action")
	res, err := d.run(ctx, log, h, ev.Params())
	if err != nil {
		log.Error(err, "action failed")
		actionsTotal.WithLabelValues(name, outcomeFailure).Inc()
		ev.Fail(fmt.Sprintf("%s: %v", h.failure, err))
		return
	}

	log.V(1).Info("action succeeded", "result", res.String())
	actionsTotal.WithLabelValues(name, outcomeSuccess).Inc()
	ev.SetResults(map[string]string{OutputKey: res.String()})
}

func (d *Dispatcher) run(ctx context.Context, log logr.Logger, h handler, params map[string]string) (dns.Result, error) {
	req, err := d.parse(h, params)
	if err != nil {
		return dns.Result{}, err
	}

	ep, err := config.ResolveEndpoint(ctx, d.source, req.ServiceName, d.cfg.PortName)
	if err != nil {
		return dns.Result{}, fmt.Errorf("resolving service %q: %w", req.ServiceName, err)
	}
	zonesURL := dns.ZonesURL(ep.Host, ep.Port)
	log.V(1).Info("resolved DNS server", "service", req.ServiceName, "url", zonesURL)

	p, err := d.newProvider(d.cfg.Provider, log.WithName("dns-"+d.cfg.Provider), d.cfg.ProviderSettings(zonesURL))
	if err != nil {
		return dns.Result{}, fmt.Errorf("creating DNS provider: %w", err)
	}
	return h.call(ctx, p, req)
}

// parse validates params into a request. Names are not checked locally;
// the server is authoritative for their syntax. An empty subdomain is
// allowed and addresses the zone apex.
func (d *Dispatcher) parse(h handler, params map[string]string) (request, error) {
	for _, key := range h.required {
		v, ok := params[key]
		if !ok || (v == "" && key != ParamSubdomain) {
			return request{}, fmt.Errorf("missing required parameter %q", key)
		}
	}

	req := request{
		ServiceName: d.cfg.ServiceName,
		Record: dns.RecordSpec{
			Zone:      dns.ZoneSpec{Name: params[ParamZoneName]},
			OwnerName: params[ParamSubdomain],
			Type:      dns.RecordTypeA,
			TTL:       dns.DefaultTTL,
			TargetIP:  params[ParamIP],
		},
	}
	if v := params[ParamServiceName]; v != "" {
		req.ServiceName = v
	}
	return req, nil
}

// ConfigChanged updates the unit status from the current registry value.
func (d *Dispatcher) ConfigChanged(value string) {
	if value == "" {
		d.log.Info("service registry configuration missing", "key", d.cfg.Registry.Key)
		d.unit.SetBlocked(d.cfg.Registry.Key + " missing")
		return
	}
	d.log.Info("service registry configuration changed", "key", d.cfg.Registry.Key, "value", value)
	d.unit.SetActive("")
}
