// Package presets provides named proposal presets per vendor. A built-in
// catalog is embedded; an optional YAML file can add or replace entries.
package presets

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ipsec-confgen/internal/vpn"
)

//go:embed presets.yaml
var builtin []byte

var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrInvalidPreset = errors.New("invalid preset")
)

// Preset holds the request fields a preset can fill in.
type Preset struct {
	Phase1Proposal string `yaml:"phase1_proposal" json:"phase1_proposal,omitempty"`
	Phase2Proposal string `yaml:"phase2_proposal" json:"phase2_proposal,omitempty"`
	DHGroup        string `yaml:"dhgrp" json:"dhgrp,omitempty"`
	Interface      string `yaml:"interface" json:"interface,omitempty"`
}

func (p Preset) fields() map[string]string {
	return map[string]string{
		vpn.FieldPhase1Proposal: p.Phase1Proposal,
		vpn.FieldPhase2Proposal: p.Phase2Proposal,
		vpn.FieldDHGroup:        p.DHGroup,
		vpn.FieldInterface:      p.Interface,
	}
}

func (p Preset) validate() error {
	if p.Phase1Proposal != "" && !slices.Contains(vpn.Phase1Proposals, p.Phase1Proposal) {
		return fmt.Errorf("phase1_proposal %q is not supported", p.Phase1Proposal)
	}
	if p.Phase2Proposal != "" && !slices.Contains(vpn.Phase2Proposals, p.Phase2Proposal) {
		return fmt.Errorf("phase2_proposal %q is not supported", p.Phase2Proposal)
	}
	if p.DHGroup != "" && !slices.Contains(vpn.DHGroups, p.DHGroup) {
		return fmt.Errorf("dhgrp %q is not supported", p.DHGroup)
	}
	return nil
}

// Catalog maps vendor to preset name to preset. It is read-only after load.
type Catalog struct {
	entries map[string]map[string]Preset
}

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) {
	c := &Catalog{entries: map[string]map[string]Preset{}}
	if err := c.merge(bytes.NewReader(builtin), "built-in presets"); err != nil {
		return nil, err
	}
	return c, nil
}

// Load returns the built-in catalog with overridePath merged on top. Entries
// in the file replace built-in presets of the same vendor and name.
func Load(overridePath string) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	overridePath = strings.TrimSpace(overridePath)
	if overridePath == "" {
		return c, nil
	}
	file, err := os.Open(overridePath)
	if err != nil {
		return nil, fmt.Errorf("open presets file: %w", err)
	}
	defer file.Close()
	if err := c.merge(file, overridePath); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) merge(r io.Reader, source string) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var raw map[string]map[string]Preset
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", source, err)
	}
	for vendor, named := range raw {
		vendor = strings.ToLower(strings.TrimSpace(vendor))
		if err := vpn.ValidateVendor(vendor); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPreset, source, err)
		}
		if c.entries[vendor] == nil {
			c.entries[vendor] = map[string]Preset{}
		}
		for name, preset := range named {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("%w: %s: empty preset name under %s", ErrInvalidPreset, source, vendor)
			}
			if err := preset.validate(); err != nil {
				return fmt.Errorf("%w: %s: %s/%s: %v", ErrInvalidPreset, source, vendor, name, err)
			}
			c.entries[vendor][name] = preset
		}
	}
	return nil
}

// Get returns the named preset for vendor.
func (c *Catalog) Get(vendor, name string) (Preset, error) {
	preset, ok := c.entries[strings.ToLower(strings.TrimSpace(vendor))][strings.TrimSpace(name)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q for vendor %s", ErrUnknownPreset, name, vendor)
	}
	return preset, nil
}

// Apply returns a copy of fields with every empty preset-controlled field
// filled from the named preset. Values the caller set are never replaced.
func (c *Catalog) Apply(vendor, name string, fields map[string]string) (map[string]string, error) {
	preset, err := c.Get(vendor, name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(fields)+4)
	for key, value := range fields {
		out[key] = value
	}
	for key, value := range preset.fields() {
		if value != "" && strings.TrimSpace(out[key]) == "" {
			out[key] = value
		}
	}
	return out, nil
}

// Vendors returns the vendors with at least one preset, sorted.
func (c *Catalog) Vendors() []string {
	vendors := make([]string, 0, len(c.entries))
	for vendor, named := range c.entries {
		if len(named) > 0 {
			vendors = append(vendors, vendor)
		}
	}
	sort.Strings(vendors)
	return vendors
}

// Names returns the preset names for vendor, sorted.
func (c *Catalog) Names(vendor string) []string {
	named := c.entries[strings.ToLower(strings.TrimSpace(vendor))]
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the whole catalog.
func (c *Catalog) All() map[string]map[string]Preset {
	out := make(map[string]map[string]Preset, len(c.entries))
	for vendor, named := range c.entries {
		copied := make(map[string]Preset, len(named))
		for name, preset := range named {
			copied[name] = preset
		}
		out[vendor] = copied
	}
	return out
}
