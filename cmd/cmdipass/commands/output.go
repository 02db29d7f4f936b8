package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"cmdipass/internal/domain"
)

// outputFormat is the --format flag value.
type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(s string) error {
	switch v := outputFormat(strings.ToLower(s)); v {
	case formatText, formatJSON, formatYAML:
		*f = v
		return nil
	}
	return fmt.Errorf("must be one of text, json, yaml")
}

func (f *outputFormat) Type() string { return "format" }

// listing is one row of `get` output. Passwords are never listed.
type listing struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
	Login string `json:"login" yaml:"login"`
	UUID  string `json:"uuid" yaml:"uuid"`
}

func (f outputFormat) writeList(w io.Writer, entries []domain.Entry) error {
	if f == formatText {
		for i, e := range entries {
			if _, err := fmt.Fprintf(w, "%d: %s\n", i, e); err != nil {
				return err
			}
		}
		return nil
	}
	rows := make([]listing, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, listing{Index: i, Name: e.Name, Login: e.Login, UUID: e.UUID})
	}
	return f.encode(w, rows)
}

// writeOne prints a selected entry. Structured formats include the password
// since the caller asked for this entry specifically.
func (f outputFormat) writeOne(w io.Writer, e domain.Entry) error {
	if f == formatText {
		_, err := fmt.Fprintln(w, e)
		return err
	}
	return f.encode(w, e)
}

func (f outputFormat) writeStatus(w io.Writer, st domain.AssociationStatus) error {
	if f == formatText {
		_, err := fmt.Fprintf(w, "Config:      %s\nBackend:     %s\nID:          %s\nFingerprint: %s\n",
			st.Path, st.Backend, st.ID, st.Fingerprint)
		return err
	}
	return f.encode(w, st)
}

func (f outputFormat) encode(w io.Writer, v any) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", f)
}

func writeField(w io.Writer, value string) error {
	_, err := fmt.Fprintln(w, value)
	return err
}
