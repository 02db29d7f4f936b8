package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"cmdipass/internal/domain"
	"cmdipass/internal/protocol/keepasshttp/keepasshttptest"
)

var testEntries = []domain.Entry{
	{Name: "GitHub", Login: "alice", Password: "hunter2", UUID: "0123456789abcdef0123456789abcdef"},
	{Name: "GitHub (work)", Login: "alice@corp", Password: "s3cret", UUID: "fedcba9876543210fedcba9876543210"},
}

type cli struct {
	t      *testing.T
	srv    *keepasshttptest.Server
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	srv := keepasshttptest.NewServer(t, "abc")
	srv.SetEntries(testEntries...)
	return &cli{t: t, srv: srv, config: filepath.Join(t.TempDir(), ".cmdipass")}
}

// run executes the command line against the fake server.
func (c *cli) run(args ...string) (stdout, stderr string, err error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--config", c.config, "--url", c.srv.URL}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestGet_Text(t *testing.T) {
	c := newCLI(t)

	stdout, stderr, err := c.run("get", "github.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := "0: GitHub - alice - 0123456789abcdef0123456789abcdef\n" +
		"1: GitHub (work) - alice@corp - fedcba9876543210fedcba9876543210\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if strings.Contains(stdout, "hunter2") {
		t.Error("get printed a password")
	}
	if !strings.Contains(stderr, "Config file not found at") || !strings.Contains(stderr, "Config file written.") {
		t.Errorf("stderr lacks first-run notices: %q", stderr)
	}
}

func TestGet_JSON(t *testing.T) {
	c := newCLI(t)

	stdout, _, err := c.run("--format", "json", "get", "github.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var rows []listing
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if len(rows) != 2 || rows[1].Index != 1 || rows[1].Login != "alice@corp" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestGetOne(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"by index", []string{"--index", "1"}, "GitHub (work) - alice@corp - fedcba9876543210fedcba9876543210\n"},
		{"password only", []string{"--index", "0", "--password-only"}, "hunter2\n"},
		{"username only", []string{"--index", "1", "--username-only"}, "alice@corp\n"},
		{"by uuid", []string{"--uuid", "FEDCBA98-7654-3210-FEDC-BA9876543210", "--password-only"}, "s3cret\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			stdout, _, err := c.run(append([]string{"get-one", "github.com"}, tt.args...)...)
			if err != nil {
				t.Fatalf("get-one: %v", err)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestGetOne_YAML(t *testing.T) {
	c := newCLI(t)

	stdout, _, err := c.run("-o", "yaml", "get-one", "github.com", "--index", "0")
	if err != nil {
		t.Fatalf("get-one: %v", err)
	}
	var e domain.Entry
	if err := yaml.Unmarshal([]byte(stdout), &e); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout)
	}
	if e != testEntries[0] {
		t.Errorf("entry = %+v", e)
	}
}

func TestGetOne_NotFound(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run("get-one", "github.com", "--index", "7")
	if err == nil || err.Error() != "No entry found at index 7" {
		t.Fatalf("error = %v", err)
	}
	_, _, err = c.run("get-one", "github.com", "--uuid", "00000000000000000000000000000000")
	if err == nil || err.Error() != "No entry found with UUID 00000000000000000000000000000000" {
		t.Fatalf("error = %v", err)
	}
}

func TestGetOne_FlagRules(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no selector", []string{"get-one", "github.com"}},
		{"both selectors", []string{"get-one", "github.com", "--index", "0", "--uuid", "x"}},
		{"both field filters", []string{"get-one", "github.com", "--index", "0", "--password-only", "--username-only"}},
		{"missing search", []string{"get-one", "--index", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			if _, _, err := c.run(tt.args...); err == nil {
				t.Fatal("expected a usage error")
			}
			if n := len(c.srv.Requests()); n != 0 {
				t.Errorf("%d requests sent for an invalid command line", n)
			}
		})
	}
}

func TestAssociateThenStatus(t *testing.T) {
	c := newCLI(t)

	stdout, _, err := c.run("associate")
	if err != nil {
		t.Fatalf("associate: %v", err)
	}
	if !strings.Contains(stdout, "ID:          abc") {
		t.Errorf("associate output = %q", stdout)
	}

	stdout, _, err = c.run("--format", "json", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var st domain.AssociationStatus
	if err := json.Unmarshal([]byte(stdout), &st); err != nil {
		t.Fatalf("status is not JSON: %v", err)
	}
	if st.Backend != domain.BackendKeePassHTTP || st.ID != "abc" || st.Path != c.config {
		t.Errorf("status = %+v", st)
	}

	if _, _, err := c.run("associate"); !errors.Is(err, domain.ErrConfig) {
		t.Errorf("second associate: expected ConfigError, got %v", err)
	}
}

func TestStatus_NoAssociation(t *testing.T) {
	c := newCLI(t)
	if _, _, err := c.run("status"); !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	c := newCLI(t)

	for _, args := range [][]string{{"version"}, {"--version"}} {
		stdout, _, err := c.run(args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if stdout != "cmdipass-"+Version+"\n" {
			t.Errorf("%v printed %q", args, stdout)
		}
	}
}

func TestFormatFlag_Invalid(t *testing.T) {
	c := newCLI(t)
	if _, _, err := c.run("--format", "xml", "version"); err == nil {
		t.Fatal("expected an error for --format xml")
	}
}

func TestReportError_ConfigRejectedHint(t *testing.T) {
	c := newCLI(t)
	if _, _, err := c.run("associate"); err != nil {
		t.Fatalf("associate: %v", err)
	}

	// A server that lost the association rejects test-associate.
	c.srv.Register("other", c.srv.Key())
	_, _, err := c.run("get", "github.com")
	if !errors.Is(err, domain.ErrConfigRejected) {
		t.Fatalf("expected ErrConfigRejected, got %v", err)
	}

	var buf bytes.Buffer
	reportError(&buf, err)
	out := buf.String()
	if !strings.HasPrefix(out, "Error: ") {
		t.Errorf("report = %q", out)
	}
	if !strings.Contains(out, "delete your config file ("+c.config+") and re-associate") {
		t.Errorf("report lacks recovery hint: %q", out)
	}
}
