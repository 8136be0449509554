// Package generator composes the configuration pipeline: presets, request
// validation, template rendering, structural checks, PSK policy and storage.
package generator

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ipsec-confgen/internal/artifact"
	"ipsec-confgen/internal/check"
	"ipsec-confgen/internal/presets"
	"ipsec-confgen/internal/secret"
	"ipsec-confgen/internal/templates"
	"ipsec-confgen/internal/vpn"
)

// Input is one generation request as received from a collaborator.
type Input struct {
	Fields           map[string]string
	FortiManagerMode bool
	IncludePSK       bool
	SaveEncrypted    bool
	Preset           string
}

// Result is the outcome of a successful generation. Config honours the
// IncludePSK policy.
type Result struct {
	Vendor   string       `json:"vendor"`
	Template string       `json:"template"`
	Config   string       `json:"config"`
	Warnings []string     `json:"warnings"`
	Request  *vpn.Request `json:"-"`
}

// Options describes the accepted input values.
type Options struct {
	Vendors           []string            `json:"vendors"`
	TunnelIPVendors   []string            `json:"tunnel_ip_vendors"`
	FallbackVendor    string              `json:"fallback_vendor"`
	Phase1Proposals   []string            `json:"phase1_proposals"`
	Phase2Proposals   []string            `json:"phase2_proposals"`
	DHGroups          []string            `json:"dh_groups"`
	Defaults          map[string]string   `json:"defaults"`
	RequiredFieldsFor map[string][]string `json:"required_fields_for"`
}

// Service runs the pipeline. Writer and Presets are optional.
type Service struct {
	registry *templates.Registry
	writer   *artifact.Writer
	presets  *presets.Catalog
	logger   *log.Logger
}

// NewService wires a pipeline around registry.
func NewService(registry *templates.Registry, writer *artifact.Writer, catalog *presets.Catalog, logger *log.Logger) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("template registry is required")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{registry: registry, writer: writer, presets: catalog, logger: logger}, nil
}

// Presets returns the preset catalog, or nil when none is configured.
func (s *Service) Presets() *presets.Catalog {
	return s.presets
}

// Generate validates and renders in. Validation failures are returned as
// *vpn.ValidationError before anything is rendered.
func (s *Service) Generate(in Input) (*Result, error) {
	result, _, err := s.generate(in)
	return result, err
}

// Save generates in and stores the artifact according to the input policy.
func (s *Service) Save(ctx context.Context, in Input) (*Result, *artifact.Artifact, error) {
	if s.writer == nil {
		return nil, nil, fmt.Errorf("%w: storage is not configured", artifact.ErrStorage)
	}
	result, raw, err := s.generate(in)
	if err != nil {
		return nil, nil, err
	}
	art, err := s.writer.Save(ctx, result.Vendor, result.Request, raw, in.IncludePSK, in.SaveEncrypted)
	if err != nil {
		s.logger.WithError(err).WithField("vendor", result.Vendor).Error("Failed to save artifact")
		return nil, nil, err
	}
	s.logger.WithFields(log.Fields{
		"vendor":    result.Vendor,
		"tunnel":    result.Request.TunnelName,
		"file":      art.FilePath,
		"encrypted": art.EncryptedPSK != nil,
	}).Info("Saved artifact")
	return result, art, nil
}

func (s *Service) generate(in Input) (*Result, string, error) {
	fields := in.Fields
	if in.Preset != "" {
		if s.presets == nil {
			return nil, "", fmt.Errorf("%w: %q (no presets loaded)", presets.ErrUnknownPreset, in.Preset)
		}
		vendor := vpn.ResolveVendor(fields, in.FortiManagerMode)
		applied, err := s.presets.Apply(vendor, in.Preset, fields)
		if err != nil {
			return nil, "", err
		}
		fields = applied
	}

	req, err := vpn.Parse(fields, in.FortiManagerMode)
	if err != nil {
		s.logger.WithError(err).Debug("Rejected invalid request")
		return nil, "", err
	}

	renderer, dedicated := s.registry.Lookup(req.Vendor)
	if renderer == nil {
		return nil, "", &templates.RenderError{Vendor: req.Vendor, Message: "no renderer registered"}
	}
	raw, err := renderer.Render(req)
	if err != nil {
		s.logger.WithError(err).WithField("vendor", req.Vendor).Error("Template render failed")
		return nil, "", err
	}

	warnings := []string{}
	if !dedicated {
		warnings = append(warnings, fmt.Sprintf(
			"no dedicated template for vendor %s; rendered with the %s template",
			req.Vendor, renderer.Vendor(),
		))
	}
	warnings = append(warnings, check.Structure(raw, req.Vendor)...)
	warnings = append(warnings, vpn.Lint(req)...)

	policy := secret.Policy{IncludePSK: in.IncludePSK, SaveEncrypted: in.SaveEncrypted}
	result := &Result{
		Vendor:   req.Vendor,
		Template: renderer.Template(),
		Config:   policy.Output(raw, req.PSK),
		Warnings: warnings,
		Request:  req,
	}
	s.logger.WithFields(log.Fields{
		"vendor":      req.Vendor,
		"tunnel":      req.TunnelName,
		"template":    result.Template,
		"warnings":    len(warnings),
		"include_psk": in.IncludePSK,
	}).Info("Generated configuration")
	return result, raw, nil
}

// Options reports the accepted enum values, defaults and vendors.
func (s *Service) Options() Options {
	tunnelVendors := []string{}
	required := map[string][]string{}
	for _, vendor := range s.registry.Vendors() {
		if vpn.RequiresTunnelIPs(vendor) {
			tunnelVendors = append(tunnelVendors, vendor)
			required[vendor] = []string{vpn.FieldTunnelLocalIP, vpn.FieldTunnelRemoteIP}
		}
	}
	return Options{
		Vendors:         s.registry.Vendors(),
		TunnelIPVendors: tunnelVendors,
		FallbackVendor:  templates.FallbackVendor,
		Phase1Proposals: append([]string(nil), vpn.Phase1Proposals...),
		Phase2Proposals: append([]string(nil), vpn.Phase2Proposals...),
		DHGroups:        append([]string(nil), vpn.DHGroups...),
		Defaults: map[string]string{
			vpn.FieldVendor:        vpn.DefaultVendor,
			vpn.FieldLocalEndpoint: vpn.DefaultLocalEndpoint,
			vpn.FieldLocalPort:     vpn.DefaultLocalPort,
		},
		RequiredFieldsFor: required,
	}
}
