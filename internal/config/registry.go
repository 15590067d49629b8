package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultAPIPort is used when a service does not publish the configured
// port name. It is the PowerDNS webserver default.
const DefaultAPIPort = 8081

// ServerEndpoint is the network location of a registered service.
type ServerEndpoint struct {
	Host string
	Port int
}

// Service is a single entry of the service registry.
type Service struct {
	Name  string          `json:"-"`
	IPs   []string        `json:"ip"`
	Ports map[string]Port `json:"ports"`
}

// Port is a named port of a Service.
type Port struct {
	Port int `json:"port"`
}

// IP returns the first address of the service.
func (s Service) IP() (string, error) {
	if len(s.IPs) == 0 {
		return "", fmt.Errorf("service %q has no ip", s.Name)
	}
	return s.IPs[0], nil
}

// Port returns the number of the named port.
func (s Service) Port(name string) (int, bool) {
	p, ok := s.Ports[name]
	if !ok || p.Port == 0 {
		return 0, false
	}
	return p.Port, true
}

// ServiceRegistry maps service names to their addresses.
type ServiceRegistry struct {
	services map[string]Service
}

// registryBlob is the layout of the osm-config value.
type registryBlob struct {
	V0 struct {
		K8s struct {
			Services map[string]Service `json:"services"`
		} `json:"k8s"`
	} `json:"v0"`
}

// ParseServiceRegistry decodes a JSON blob of the form
//
//	{"v0": {"k8s": {"services": {"<name>": {"ip": ["10.0.0.1"], "ports": {"api": {"port": 8081}}}}}}}
func ParseServiceRegistry(data []byte) (*ServiceRegistry, error) {
	var blob registryBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("parsing service registry: %w", err)
	}
	services := make(map[string]Service, len(blob.V0.K8s.Services))
	for name, svc := range blob.V0.K8s.Services {
		svc.Name = name
		services[name] = svc
	}
	return &ServiceRegistry{services: services}, nil
}

// LookupService returns the first service, in name order, whose name
// contains substr.
func (r *ServiceRegistry) LookupService(substr string) (Service, error) {
	for _, name := range r.Names() {
		if strings.Contains(name, substr) {
			return r.services[name], nil
		}
	}
	return Service{}, fmt.Errorf("no service matching %q in registry", substr)
}

// Resolve finds the service matching substr and returns its endpoint. The
// port is looked up by portName, falling back to DefaultAPIPort.
func (r *ServiceRegistry) Resolve(substr, portName string) (ServerEndpoint, error) {
	svc, err := r.LookupService(substr)
	if err != nil {
		return ServerEndpoint{}, err
	}
	ip, err := svc.IP()
	if err != nil {
		return ServerEndpoint{}, err
	}
	port, ok := svc.Port(portName)
	if !ok {
		port = DefaultAPIPort
	}
	return ServerEndpoint{Host: ip, Port: port}, nil
}

// Names returns all registered service names, sorted.
func (r *ServiceRegistry) Names() []string {
	names := make([]string, 0, len(r.services))
	for n := range r.services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
