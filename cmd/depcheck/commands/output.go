package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dephub/dephub-requirements/dephub"
)

// textRenderer is implemented by results with a human readable form.
type textRenderer interface {
	renderText(w io.Writer) error
}

// render writes v to w in the given format (text, json or yaml).
func render(w io.Writer, format string, v textRenderer) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return v.renderText(w)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// sourceReport is the check result of one dependency source.
type sourceReport struct {
	Source        string `json:"source" yaml:"source"`
	dephub.Report `yaml:",inline"`
}

type checkResult struct {
	Reports []sourceReport `json:"reports" yaml:"reports"`
}

func (cr checkResult) satisfied() bool {
	for _, r := range cr.Reports {
		if !r.Satisfied() {
			return false
		}
	}
	return true
}

func (cr checkResult) renderText(w io.Writer) error {
	for _, r := range cr.Reports {
		if r.Satisfied() {
			if _, err := fmt.Fprintf(w, "%s: OK (%d requirements)\n", r.Source, len(r.Requires)); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "%s: %d requirement(s) not met\n", r.Source, len(r.Missing)); err != nil {
			return err
		}
		for _, m := range r.Missing {
			actual := m.ActualVersion
			if actual == "" {
				actual = "unknown"
			}
			if _, err := fmt.Fprintf(w, "  %s: requires %s (actual %s), caused by %s\n",
				m.Requirement, m.RequiredVersion, actual, m.CausedBy); err != nil {
				return err
			}
		}
		if r.DisabledDependency {
			if _, err := fmt.Fprintln(w, "  depends on a disabled component"); err != nil {
				return err
			}
		}
	}
	return nil
}

type matchResult struct {
	Version    string   `json:"version" yaml:"version"`
	Expression string   `json:"expression" yaml:"expression"`
	Missing    []string `json:"missing" yaml:"missing"`
}

func (mr matchResult) renderText(w io.Writer) error {
	if len(mr.Missing) == 0 {
		_, err := fmt.Fprintf(w, "%s satisfies %q\n", mr.Version, mr.Expression)
		return err
	}
	_, err := fmt.Fprintf(w, "%s does not satisfy: %s\n", mr.Version, strings.Join(mr.Missing, ", "))
	return err
}

type activeEntry struct {
	Source             string `json:"source" yaml:"source"`
	DisabledDependency bool   `json:"disabledDependency" yaml:"disabledDependency"`
}

type activeResult struct {
	Sources []activeEntry `json:"sources" yaml:"sources"`
}

func (ar activeResult) anyDisabled() bool {
	for _, s := range ar.Sources {
		if s.DisabledDependency {
			return true
		}
	}
	return false
}

func (ar activeResult) renderText(w io.Writer) error {
	for _, s := range ar.Sources {
		state := "all required components are activated"
		if s.DisabledDependency {
			state = "depends on a disabled component"
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", s.Source, state); err != nil {
			return err
		}
	}
	return nil
}
