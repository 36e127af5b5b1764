package dff

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cluster.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadConfigDoc(t *testing.T) {
	path := writeConfigFile(t, `{"groups":[{"name":"G1","endpoint":"127.0.0.1:5000","OConn":["G2"]},{"name":"G2"}]}`)

	doc, err := LoadConfigDoc(path)
	if err != nil {
		t.Fatalf("LoadConfigDoc returned error: %v", err)
	}
	if len(doc.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(doc.Groups))
	}
	if doc.Groups[0].Name != "G1" || doc.Groups[0].Endpoint != "127.0.0.1:5000" {
		t.Errorf("unexpected first group: %+v", doc.Groups[0])
	}
}

func TestLoadConfigDoc_MissingFile(t *testing.T) {
	_, err := LoadConfigDoc(filepath.Join(t.TempDir(), "nope.json"))
	var cfgErr *ConfigurationError
	if err == nil {
		t.Fatal("expected an error for a missing configuration file")
	}
	if as, ok := err.(*ConfigurationError); ok {
		cfgErr = as
	}
	if cfgErr == nil {
		t.Fatalf("error = %v (%T), want *ConfigurationError", err, err)
	}
}

func TestConfigDoc_Validate(t *testing.T) {
	doc := &ConfigDoc{Groups: []ConfigGroup{
		{Name: "G1", Endpoint: "10.0.0.1:4000", OConn: []string{"G2"}},
		{Name: "G1"},
		{Name: "G3", OConn: []string{"ghost"}},
		{Name: "bad", Endpoint: "no-port-here"},
	}}

	// Four errors: G1's OConn names the undeclared G2, the duplicate G1,
	// G3's OConn names the undeclared ghost, and bad's endpoint has no port.
	errs := doc.Validate()
	if len(errs) != 4 {
		t.Fatalf("Validate returned %d errors, want 4: %v", len(errs), errs)
	}
}

func TestConfigDoc_ExpectedInboundConnections(t *testing.T) {
	doc := &ConfigDoc{Groups: []ConfigGroup{
		{Name: "G1", OConn: []string{"G3"}},
		{Name: "G2", OConn: []string{"G3", "G3"}},
		{Name: "G3"},
	}}

	got := doc.ExpectedInboundConnections()
	if got["G3"] != 3 {
		t.Errorf("ExpectedInboundConnections()[\"G3\"] = %d, want 3", got["G3"])
	}
	if got["G1"] != 0 {
		t.Errorf("ExpectedInboundConnections()[\"G1\"] = %d, want 0", got["G1"])
	}
}

func TestConfigDoc_Resolve(t *testing.T) {
	doc := &ConfigDoc{Groups: []ConfigGroup{
		{Name: "G1", Endpoint: "10.0.0.1:4000", OConn: []string{"G2"}},
		{Name: "G2", Endpoint: "10.0.0.2:4001"},
	}}

	g1 := NewGroup("G1", NewSequentialNode("p1", nil))
	g2 := NewGroup("G2", NewSequentialNode("p2", nil))
	groups := map[string]*Group{"G1": g1, "G2": g2}

	if err := doc.resolve(groups); err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	if g1.Endpoint() == nil || g1.Endpoint().Port != 4000 {
		t.Errorf("G1 endpoint = %v, want port 4000", g1.Endpoint())
	}
	if len(g1.Destinations()) != 1 || g1.Destinations()[0].Port != 4001 {
		t.Errorf("G1 destinations = %v, want one entry with port 4001", g1.Destinations())
	}
	if g2.ExpectedInboundConnections() != 1 {
		t.Errorf("G2 ExpectedInboundConnections() = %d, want 1", g2.ExpectedInboundConnections())
	}
	if g1.ExpectedInboundConnections() != 0 {
		t.Errorf("G1 ExpectedInboundConnections() = %d, want 0", g1.ExpectedInboundConnections())
	}
}

func TestConfigDoc_Resolve_UnimplementedGroup(t *testing.T) {
	doc := &ConfigDoc{Groups: []ConfigGroup{
		{Name: "G1"},
		{Name: "ghost"},
	}}

	groups := map[string]*Group{
		"G1": NewGroup("G1", NewSequentialNode("p1", nil)),
	}

	err := doc.resolve(groups)
	if err == nil {
		t.Fatal("expected an error when a parsed group has no local descriptor")
	}
	var cfgErr *ConfigurationError
	if as, ok := err.(*ConfigurationError); ok {
		cfgErr = as
	}
	if cfgErr == nil {
		t.Fatalf("error = %v (%T), want *ConfigurationError", err, err)
	}
	if cfgErr.Name != "ghost" {
		t.Errorf("ConfigurationError.Name = %q, want %q", cfgErr.Name, "ghost")
	}
	if cfgErr.Detail != "a specified group in the configuration file has not been implemented" {
		t.Errorf("ConfigurationError.Detail = %q, want the spec-mandated message", cfgErr.Detail)
	}
}

func TestConfigDoc_Resolve_UnknownOConnTarget(t *testing.T) {
	doc := &ConfigDoc{Groups: []ConfigGroup{
		{Name: "G1", OConn: []string{"ghost"}},
	}}

	groups := map[string]*Group{"G1": NewGroup("G1", NewSequentialNode("p1", nil))}

	if err := doc.resolve(groups); err == nil {
		t.Fatal("expected an error when OConn references an unknown group")
	}
}

func TestParseEndpoint(t *testing.T) {
	ep, err := parseEndpoint("10.0.0.1:9090")
	if err != nil {
		t.Fatalf("parseEndpoint returned error: %v", err)
	}
	if ep.Address != "10.0.0.1" || ep.Port != 9090 {
		t.Errorf("parseEndpoint = %+v, want {10.0.0.1 9090}", ep)
	}

	if _, err := parseEndpoint("no-colon"); err == nil {
		t.Error("expected an error for an endpoint with no ':' separator")
	}
	if _, err := parseEndpoint("host:notaport"); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}
