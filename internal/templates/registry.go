// Package templates renders validated requests into vendor configuration
// text. Template bodies are embedded; each registered vendor has one
// Renderer and unknown vendors fall back to the FortiGate renderer.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"ipsec-confgen/internal/secret"
	"ipsec-confgen/internal/vpn"
)

//go:embed vendors/*.tmpl partials/*.tmpl
var files embed.FS

// FallbackVendor renders every vendor without a dedicated template.
const FallbackVendor = vpn.VendorFortiGate

var ErrRender = errors.New("template render failed")

// RenderError reports a failure inside the template registry. The message
// never contains the request PSK.
type RenderError struct {
	Vendor   string
	Template string
	Message  string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%v: vendor %s template %s: %s", ErrRender, e.Vendor, e.Template, e.Message)
}

func (e *RenderError) Unwrap() error {
	return ErrRender
}

// Renderer turns a request into configuration text for one vendor.
type Renderer interface {
	Vendor() string
	Template() string
	Render(req *vpn.Request) (string, error)
}

type templateRenderer struct {
	vendor string
	name   string
	tmpl   *template.Template
}

func (r *templateRenderer) Vendor() string   { return r.vendor }
func (r *templateRenderer) Template() string { return r.name }

func (r *templateRenderer) Render(req *vpn.Request) (string, error) {
	if req == nil {
		return "", &RenderError{Vendor: r.vendor, Template: r.name, Message: "request is nil"}
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, req); err != nil {
		return "", &RenderError{
			Vendor:   r.vendor,
			Template: r.name,
			Message:  secret.Redact(err.Error(), req.PSK),
		}
	}
	return buf.String(), nil
}

// NewTemplateRenderer parses an embedded vendor template together with the
// shared partials.
func NewTemplateRenderer(vendor, name string) (Renderer, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(funcs).
		ParseFS(files, "partials/*.tmpl", "vendors/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return &templateRenderer{vendor: vendor, name: name, tmpl: tmpl}, nil
}

// Registry maps vendor identifiers to renderers.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry returns a registry with every built-in vendor template loaded.
func NewRegistry() (*Registry, error) {
	r := &Registry{renderers: map[string]Renderer{}}
	for _, vendor := range vpn.RegisteredVendors() {
		renderer, err := NewTemplateRenderer(vendor, vendor+".tmpl")
		if err != nil {
			return nil, err
		}
		r.Register(renderer)
	}
	return r, nil
}

// Register adds or replaces the renderer for renderer.Vendor().
func (r *Registry) Register(renderer Renderer) {
	r.renderers[strings.ToLower(renderer.Vendor())] = renderer
}

// Lookup returns the renderer used for vendor and whether it is a dedicated
// one rather than the fallback.
func (r *Registry) Lookup(vendor string) (Renderer, bool) {
	if renderer, ok := r.renderers[strings.ToLower(strings.TrimSpace(vendor))]; ok {
		return renderer, true
	}
	return r.renderers[FallbackVendor], false
}

// Render renders req with the renderer registered for vendor.
func (r *Registry) Render(vendor string, req *vpn.Request) (string, error) {
	renderer, _ := r.Lookup(vendor)
	if renderer == nil {
		return "", &RenderError{Vendor: vendor, Template: "", Message: "no renderer registered"}
	}
	return renderer.Render(req)
}

// Vendors returns the registered vendor identifiers in sorted order.
func (r *Registry) Vendors() []string {
	vendors := make([]string, 0, len(r.renderers))
	for vendor := range r.renderers {
		vendors = append(vendors, vendor)
	}
	sort.Strings(vendors)
	return vendors
}
