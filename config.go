package dff

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ConfigGroup is one entry of the cluster configuration document (spec.md
// §6): a group name, an optional listen endpoint "addr:port", and an
// optional list of other group names this group connects out to.
type ConfigGroup struct {
	Name     string   `json:"name" yaml:"name"`
	Endpoint string   `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	OConn    []string `json:"OConn,omitempty" yaml:"OConn,omitempty"`
}

// ConfigDoc is the top-level cluster configuration document.
type ConfigDoc struct {
	Groups []ConfigGroup `json:"groups" yaml:"groups"`
}

// LoadConfigDoc reads and JSON-decodes the configuration document at path.
func LoadConfigDoc(path string) (*ConfigDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Detail: "reading configuration file", Name: path, Cause: err}
	}
	var doc ConfigDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigurationError{Detail: "parsing configuration file", Name: path, Cause: err}
	}
	return &doc, nil
}

// Validate checks the document for internal consistency without requiring
// a local group registry: duplicate group names, malformed endpoints, and
// OConn entries naming an undeclared group. It's the standalone check dffctl's validate
// subcommand runs against a configuration file before it's ever deployed.
func (d *ConfigDoc) Validate() []error {
	var errs []error

	seen := make(map[string]bool, len(d.Groups))
	names := make(map[string]bool, len(d.Groups))
	for _, cg := range d.Groups {
		names[cg.Name] = true
	}
	for _, cg := range d.Groups {
		if seen[cg.Name] {
			errs = append(errs, &ConfigurationError{Detail: "duplicate group name", Name: cg.Name})
		}
		seen[cg.Name] = true

		if cg.Endpoint != "" {
			if _, err := parseEndpoint(cg.Endpoint); err != nil {
				errs = append(errs, &ConfigurationError{Detail: "invalid endpoint", Name: cg.Name, Cause: err})
			}
		}

		for _, dest := range cg.OConn {
			if !names[dest] {
				errs = append(errs, &ConfigurationError{Detail: "OConn references unknown group", Name: dest})
			}
		}
	}

	return errs
}

// ExpectedInboundConnections computes, for every group in the document,
// how many other groups name it in their OConn list (spec.md §4.2 step 3),
// independent of any local registry.
func (d *ConfigDoc) ExpectedInboundConnections() map[string]int {
	out := make(map[string]int, len(d.Groups))
	for _, cg := range d.Groups {
		for _, dest := range cg.OConn {
			out[dest]++
		}
	}
	return out
}

// parseEndpoint splits "addr:port" into an Endpoint, per spec.md §4.2.
func parseEndpoint(raw string) (Endpoint, error) {
	idx := strings.LastIndex(raw, ":")
	if idx < 0 {
		return Endpoint{}, fmt.Errorf("endpoint %q missing ':' separator", raw)
	}
	addr, portStr := raw[:idx], raw[idx+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint %q has non-numeric port: %w", raw, err)
	}
	return Endpoint{Address: addr, Port: port}, nil
}

// resolve implements spec.md §4.2's three-step cross-reference algorithm.
// groups holds every group this program has declared (the whole cluster's
// topology is declared by each process; only the running one is ever
// materialized), matching ff_dgroup.hpp's dGroups::groups map.
func (d *ConfigDoc) resolve(groups map[string]*Group) error {
	byName := make(map[string]ConfigGroup, len(d.Groups))
	for _, cg := range d.Groups {
		byName[cg.Name] = cg
	}

	// Step 1: match parsed groups to local descriptors, set endpoints. A
	// parsed group with no local counterpart is a fatal misconfiguration
	// (ff_dgroup.hpp:566-572's "A specified group in the configuration
	// file has not been implemented!").
	for _, cg := range d.Groups {
		g, ok := groups[cg.Name]
		if !ok {
			return &ConfigurationError{Detail: "a specified group in the configuration file has not been implemented", Name: cg.Name}
		}
		if cg.Endpoint != "" {
			ep, err := parseEndpoint(cg.Endpoint)
			if err != nil {
				return &ConfigurationError{Detail: "invalid endpoint", Name: cg.Name, Cause: err}
			}
			g.SetEndpoint(ep)
		}
	}

	// Step 2: resolve each group's OConn destinations.
	expected := make(map[string]int, len(d.Groups))
	for _, cg := range d.Groups {
		g := groups[cg.Name]
		for _, dest := range cg.OConn {
			destCfg, ok := byName[dest]
			if !ok {
				return &ConfigurationError{Detail: "OConn references unknown group", Name: dest}
			}
			expected[dest]++
			if destCfg.Endpoint == "" {
				return &ConfigurationError{Detail: "destination group has no endpoint", Name: dest}
			}
			ep, err := parseEndpoint(destCfg.Endpoint)
			if err != nil {
				return &ConfigurationError{Detail: "invalid destination endpoint", Name: dest, Cause: err}
			}
			g.AddDestination(ep)
		}
	}

	// Step 3: set expectedInboundConnections on every declared group.
	for name, g := range groups {
		g.SetExpectedInboundConnections(expected[name])
	}

	return nil
}
