package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/petal-labs/dff"
	petalotel "github.com/petal-labs/dff/otel"
)

func newValidateCmd() *cobra.Command {
	var configPath string
	var otelEndpoint string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a cluster configuration document and print its resolved group table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if otelEndpoint != "" {
				provider, err := petalotel.NewTracerProvider(ctx, otelEndpoint)
				if err != nil {
					return &ExitError{Code: 2, Err: err}
				}
				defer provider.Shutdown(ctx)

				var span trace.Span
				ctx, span = provider.Tracer("dffctl").Start(ctx, "dffctl.validate")
				defer span.End()
			}

			doc, err := loadConfigDoc(configPath)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			if errs := doc.Validate(); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintln(cmd.ErrOrStderr(), e)
				}
				return &ExitError{Code: 1, Err: fmt.Errorf("%d configuration error(s)", len(errs))}
			}

			printTable(cmd, doc)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the cluster configuration document (.json or .yaml)")
	cmd.MarkFlagRequired("config")
	cmd.Flags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP/HTTP collector endpoint to trace this command against (host:port)")

	return cmd
}

// loadConfigDoc reads a configuration document as JSON or, if its
// extension is .yaml/.yml, converts it from YAML first. dff.LoadConfigDoc
// itself only speaks JSON, per spec.md §6's "UTF-8 JSON" wire format — YAML
// is purely an operator convenience this CLI layers on top.
func loadConfigDoc(path string) (*dff.ConfigDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		data, err = json.Marshal(raw)
		if err != nil {
			return nil, err
		}
	}

	var doc dff.ConfigDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return &doc, nil
}

func printTable(cmd *cobra.Command, doc *dff.ConfigDoc) {
	expected := doc.ExpectedInboundConnections()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENDPOINT\tOCONN\tEXPECTED_INBOUND")
	for _, g := range doc.Groups {
		endpoint := g.Endpoint
		if endpoint == "" {
			endpoint = "-"
		}
		oconn := strings.Join(g.OConn, ",")
		if oconn == "" {
			oconn = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", g.Name, endpoint, oconn, expected[g.Name])
	}
	w.Flush()
}
