package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/seenimoa/dashcore/internal/config"
	"github.com/seenimoa/dashcore/internal/logging"
	"github.com/seenimoa/dashcore/internal/report"
	"github.com/seenimoa/dashcore/pkg/utils"
)

func setup(t *testing.T) {
	t.Helper()
	c, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default: %v", err)
	}
	cfg = c
	logger = logging.Discard()
}

func statementCmd(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("file", "", "")
	cmd.Flags().String("statement", "", "")
	cmd.Flags().Int("period", -1, "")
	for k, v := range flags {
		if err := cmd.Flags().Set(k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	return cmd
}

func TestSelectStatementDefaults(t *testing.T) {
	setup(t)
	cfg.Dashboard.Period = 1

	_, st, p, err := selectStatementFrom(statementCmd(t, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ID != "income" {
		t.Errorf("statement = %q, want income", st.ID)
	}
	if p != 1 {
		t.Errorf("period = %d, want config default 1", p)
	}
}

func TestSelectStatementFlags(t *testing.T) {
	setup(t)

	_, _, p, err := selectStatementFrom(statementCmd(t, map[string]string{"period": "3"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != 3 {
		t.Errorf("period = %d, want 3", p)
	}

	_, _, _, err = selectStatementFrom(statementCmd(t, map[string]string{"period": "4"}))
	if !errors.Is(err, report.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}

	_, _, _, err = selectStatementFrom(statementCmd(t, map[string]string{"statement": "balance"}))
	if err == nil {
		t.Error("expected error for unknown statement")
	}

	_, _, _, err = selectStatementFrom(statementCmd(t, map[string]string{"file": filepath.Join(t.TempDir(), "missing.yaml")}))
	if err == nil {
		t.Error("expected error for missing data file")
	}
}

func TestReportConfigFromSettings(t *testing.T) {
	setup(t)
	cfg.Dashboard.Currency = "₹"
	cfg.Dashboard.NumberStyle = "indian"

	rc := reportConfig(2)
	if rc.Period != 2 || rc.Currency != "₹" || rc.NumberStyle != utils.StyleIndian {
		t.Errorf("unexpected report config: %+v", rc)
	}
	if rc.PieOpts.Radius != cfg.Pie.Radius || len(rc.PieOpts.Palette) != len(cfg.Pie.Palette) {
		t.Errorf("pie options not taken from config: %+v", rc.PieOpts)
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.svg")
	if err := writeOutput(path, "<svg/>"); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "<svg/>") {
		t.Errorf("unexpected content %q", data)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"version", "status", "metrics", "report", "pie", "import-html", "serve"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
