package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// harness runs commands against one snapshot file so state carries over
// between invocations.
type harness struct {
	t     *testing.T
	now   time.Time
	db    string
	input string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &harness{
		t:   t,
		now: time.Date(2024, 3, 10, 18, 0, 0, 0, ist),
		db:  filepath.Join(home, "data", "spendsmart.json"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	var stdout, stderr bytes.Buffer
	a := newApp()
	a.location = ist
	a.now = func() time.Time { return h.now }
	a.in = strings.NewReader(h.input)
	a.errOut = &stderr

	root := a.rootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--backend", "snapshot", "--db", h.db, "--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "spendsmart %s", strings.Join(args, " "))
	return out
}

func TestInitSeedsDefaults(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("init")
	assert.Contains(t, out, "Backend:    snapshot")
	assert.Contains(t, out, "Categories: 12")
	assert.Contains(t, out, "Install ID:")

	_, err := os.Stat(h.db)
	require.NoError(t, err, "init persists the snapshot")

	assert.Contains(t, h.mustRun("init"), "Categories: 12", "init is idempotent")
}

func TestTransactionLifecycle(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("tx", "add", "--amount", "250.50", "--category", "1", "--note", "Lunch", "--date", "2024-03-02 13:00")
	assert.Contains(t, out, "Added transaction 1: ₹250.5")

	out = h.mustRun("tx", "list")
	assert.Contains(t, out, "2024-03-02 13:00")
	assert.Contains(t, out, "₹250.5")
	assert.Contains(t, out, "Food & Drinks")
	assert.Contains(t, out, "Lunch")

	h.mustRun("tx", "update", "1", "--amount", "300", "--method", "card", "--recurring", "monthly")
	out = h.mustRun("tx", "show", "1")
	assert.Contains(t, out, "₹300")
	assert.Contains(t, out, "Card")
	assert.Contains(t, out, "every 30 days")
	assert.Contains(t, out, "Lunch", "untouched fields are kept")

	assert.Contains(t, h.mustRun("tx", "search", "LUNCH"), "Lunch")
	assert.Contains(t, h.mustRun("tx", "search", "food"), "Lunch", "search matches category names")
	assert.Contains(t, h.mustRun("tx", "list", "--month", "2024-03"), "Lunch")
	assert.NotContains(t, h.mustRun("tx", "list", "--month", "2024-02"), "Lunch")
	assert.Contains(t, h.mustRun("tx", "list", "--from", "2024-03-02", "--to", "2024-03-02"), "Lunch")

	h.mustRun("tx", "delete", "1")
	assert.Contains(t, h.mustRun("tx", "recent"), "No transactions found")

	_, err := h.run("tx", "delete", "1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAddTransactionDefaults(t *testing.T) {
	h := newHarness(t)

	h.mustRun("tx", "add", "--amount", "99")
	out := h.mustRun("tx", "show", "1")
	assert.Contains(t, out, "2024-03-10 18:00")
	assert.Contains(t, out, "Others")
	assert.Contains(t, out, "UPI")
}

func TestAddTransactionValidation(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing amount", []string{"tx", "add", "--note", "x"}},
		{"zero amount", []string{"tx", "add", "--amount", "0"}},
		{"bad amount", []string{"tx", "add", "--amount", "abc"}},
		{"bad date", []string{"tx", "add", "--amount", "5", "--date", "03/02/2024"}},
		{"bad method", []string{"tx", "add", "--amount", "5", "--method", "cheque"}},
		{"bad recurrence", []string{"tx", "add", "--amount", "5", "--recurring", "yearly"}},
		{"nothing to update", []string{"tx", "update", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			assert.Error(t, err)
		})
	}

	assert.Contains(t, h.mustRun("tx", "list"), "No transactions found", "nothing was stored")
}

func TestCategoryCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("categories", "add", "Pets", "--emoji", "🐶", "--color", "#A1B2C3")
	assert.Contains(t, out, `Created category "Pets" (ID: 13)`)

	h.mustRun("tx", "add", "--amount", "40", "--category", "13", "--note", "Vet")
	h.mustRun("categories", "update", "13", "--name", "Pet Care")
	assert.Contains(t, h.mustRun("categories", "list"), "Pet Care")

	out = h.mustRun("categories", "delete", "13")
	assert.Contains(t, out, `1 transaction(s) now show as "Unknown"`)
	assert.Contains(t, h.mustRun("tx", "list"), "Unknown")

	_, err := h.run("categories", "delete", "12")
	assert.ErrorIs(t, err, common.ErrProtectedEntity)
}

func TestBudgetCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("budgets", "set", "1", "400", "--month", "2024-03")
	assert.Contains(t, out, "Budget 1: ₹400 for category 1 in 2024-03")
	h.mustRun("budgets", "set", "1", "500", "--month", "2024-03")

	out = h.mustRun("budgets", "list")
	assert.Contains(t, out, "₹500", "current month is the default")
	assert.NotContains(t, out, "₹400", "setting again replaces the limit")

	h.mustRun("tx", "add", "--amount", "400", "--category", "1", "--date", "2024-03-02")
	out = h.mustRun("budgets", "health")
	assert.Contains(t, out, "₹400 / ₹500")
	assert.Contains(t, out, "80%")

	h.mustRun("budgets", "delete", "1")
	assert.Contains(t, h.mustRun("budgets", "list"), "No budgets set for 2024-03")
}

func TestReportCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("tx", "add", "--amount", "200", "--category", "1", "--date", "2024-02-10")
	h.mustRun("tx", "add", "--amount", "300", "--category", "1", "--date", "2024-03-02 10:00")
	h.mustRun("tx", "add", "--amount", "100", "--category", "2", "--date", "2024-03-10 09:00")

	out := h.mustRun("report", "summary")
	assert.Contains(t, out, "Today:       ₹100")
	assert.Contains(t, out, "This month:  ₹400")
	assert.Contains(t, out, "Last month:  ₹200")
	assert.Contains(t, out, "+100%")

	out = h.mustRun("report", "categories")
	assert.Contains(t, out, "Food & Drinks")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "25%")

	out = h.mustRun("report", "daily", "--month", "2024-03")
	assert.Contains(t, out, "2024-03-02")
	assert.Contains(t, out, "2024-03-10")

	out = h.mustRun("report", "insights")
	assert.Contains(t, out, "Food & Drinks is your top spend at 75% of total.")
	assert.Contains(t, out, "You're spending 100% more than last month.")
	assert.Contains(t, out, "Highest spend day: 02 Mar (₹300)")
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t)
	h.mustRun("tx", "add", "--amount", "250.50", "--category", "1", "--note", "Lunch", "--date", "2024-03-02 13:00")

	out := h.mustRun("export", "csv")
	assert.Equal(t, "Date,Time,Amount,Category,Note,Payment Method,Recurring\n"+
		"2024-03-02,13:00,250.5,Food & Drinks,\"Lunch\",UPI,No\n", out)

	path := filepath.Join(t.TempDir(), "spending.xlsx")
	out = h.mustRun("export", "xlsx", "--output", path)
	assert.Contains(t, out, "Exported 1 transactions")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = h.run("export", "xlsx")
	assert.ErrorIs(t, err, common.ErrValidation, "xlsx needs a file")
	_, err = h.run("export", "pdf")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestResetRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("tx", "add", "--amount", "10", "--note", "Keep me")
	h.mustRun("categories", "add", "Pets")

	h.input = "delete\n"
	out := h.mustRun("reset")
	assert.Contains(t, out, "This will permanently delete 1 transactions")
	assert.Contains(t, out, "Reset canceled.")
	assert.Contains(t, h.mustRun("tx", "list"), "Keep me")

	h.input = ""
	assert.Contains(t, h.mustRun("reset"), "Reset canceled.", "no input means no")

	h.input = "DELETE\n"
	assert.Contains(t, h.mustRun("reset"), "All data deleted.")
	assert.Contains(t, h.mustRun("tx", "list"), "No transactions found")
	assert.NotContains(t, h.mustRun("categories", "list"), "Pets")

	h.mustRun("tx", "add", "--amount", "10")
	h.input = ""
	h.mustRun("reset", "--force")
	assert.Contains(t, h.mustRun("tx", "list"), "No transactions found")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "spendsmart dev\n", h.mustRun("version"))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{common.NewUserError("invalid amount", common.ErrValidation), "invalid amount: validation failed"},
		{common.ErrNotFound, "Not found: "},
		{common.ErrProtectedEntity, "Not allowed: "},
		{common.ErrPersistence, "Could not save your data: "},
		{common.ErrInvalidConfig, "Configuration problem: "},
		{os.ErrClosed, os.ErrClosed.Error()},
	}

	for _, tt := range tests {
		assert.True(t, strings.HasPrefix(userMessage(tt.err), tt.want), "%q does not start with %q", userMessage(tt.err), tt.want)
	}
}

func TestParseRecurring(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		none    bool
		wantErr bool
	}{
		{in: "weekly", want: 7},
		{in: "Monthly", want: 30},
		{in: "30", want: 30},
		{in: "14", wantErr: true},
		{in: "none", none: true},
		{in: "", none: true},
		{in: "0", wantErr: true},
		{in: "yearly", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRecurring(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			if tt.none {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
