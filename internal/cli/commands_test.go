package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/store"
)

func TestGenerateTimesheet(t *testing.T) {
	env := newCLIEnv(t)
	out := filepath.Join(t.TempDir(), "sheet.csv")

	stdout, _, err := env.run("generate", "timesheet", "1", "-o", out)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+out+"\n", stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `"Start","End","Duration","Tickets","Description"`, lines[0])
	assert.Equal(t, `"2024-05-01 08:00:00","2024-05-01 08:30:00","0.5","","Triage"`, lines[1])
	assert.Equal(t, `"2024-05-02 09:00:00","2024-05-02 10:00:00","","OPS-1","Pairing"`, lines[3])
}

func TestGenerateTimesheet_DefaultPathAndMonthIdent(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("--format", "json", "gen", "timesheet", "2024-06")
	require.NoError(t, err)

	got := decodeData[GeneratedFile](t, stdout)
	assert.Equal(t, int64(2), got.Invoice)
	assert.Equal(t, filepath.Join(env.outDir, "2024-6-timesheet-2.csv"), got.Path)
	assert.FileExists(t, got.Path)
}

func TestGenerateTimesheet_Stdout(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("generate", "timesheet", "2", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t,
		"\"Start\",\"End\",\"Duration\",\"Tickets\",\"Description\"\n"+
			"\"2024-06-10 09:00:00\",\"2024-06-10 13:00:00\",\"4.0\",\"\",\"Review\"\n",
		stdout)
}

func TestGenerateInvoice_DefaultsToCurrentMonth(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("generate", "invoice")
	require.NoError(t, err)

	path := filepath.Join(env.outDir, "2024-5-tax-invoice-1.pdf")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestGenerate_IdentificationFailure(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown number", []string{"generate", "invoice", "42"}},
		{"empty month", []string{"generate", "timesheet", "2023-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stderr, "Error [E003]")
			assert.Contains(t, stderr, "failed to uniquely identify an invoice: no match")
		})
	}

	entries, err := os.ReadDir(env.outDir)
	if err == nil {
		assert.Empty(t, entries, "nothing written on failure")
	}
}

func TestGenerate_BadIdent(t *testing.T) {
	env := newCLIEnv(t)

	_, stderr, err := env.run("generate", "invoice", "may")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "numeric id or month")
}

func TestLog(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("--format", "json", "log", "--date", "2024-05-21", "--activity", "1", "9+1.5", "Fix login", "OPS-4", "WEB-7")
	require.NoError(t, err)

	logged := decodeData[LoggedTime](t, stdout)
	assert.Equal(t, int64(7), logged.ID)

	env.read(func(r *store.Reader) error {
		entry, err := r.TimeByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.May, 21, 9, 0, 0, 0, time.UTC), entry.Start)
		assert.Equal(t, time.Date(2024, time.May, 21, 10, 30, 0, 0, time.UTC), entry.End)
		require.NotNil(t, entry.Duration)
		assert.InDelta(t, 1.5, *entry.Duration, 1e-9)
		require.NotNil(t, entry.ActivityID)
		assert.Equal(t, int64(1), *entry.ActivityID)

		links, err := r.TicketTimesOf(context.Background(), []model.TimeEntry{entry})
		require.NoError(t, err)
		assert.Len(t, links, 2)
		return nil
	})
}

func TestLog_DefaultsToToday(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("--format", "json", "log", "17:30-2", "Late review")
	require.NoError(t, err)

	logged := decodeData[LoggedTime](t, stdout)
	assert.Equal(t, time.Date(2024, time.May, 15, 15, 30, 0, 0, time.UTC), logged.Start)
	assert.Equal(t, time.Date(2024, time.May, 15, 17, 30, 0, 0, time.UTC), logged.End)
	assert.Nil(t, logged.ActivityID)
	assert.Empty(t, logged.Tickets)
}

func TestLog_Rejected(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"bad range", []string{"log", "9", "Work on it"}, "E002"},
		{"bad ticket", []string{"log", "9+1", "Work on it", "ops"}, "E002"},
		{"bad date", []string{"log", "--date", "21/05/2024", "9+1", "Work on it"}, "E002"},
		{"unknown project", []string{"log", "9+1", "Work on it", "NOPE-1"}, "E006"},
		{"unknown activity", []string{"log", "--activity", "99", "9+1", "Work on it"}, "E006"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stderr, "Error ["+tt.wantCode+"]")
		})
	}

	env.read(func(r *store.Reader) error {
		_, err := r.TimeByID(context.Background(), 7)
		assert.ErrorIs(t, err, store.ErrNotFound, "failed logs leave no entry behind")
		return nil
	})
}

func TestAmend(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("amend", "6", "1", "OPS-3", "2024-05-22", "Call with client")
	require.NoError(t, err)

	env.read(func(r *store.Reader) error {
		entry, err := r.TimeByID(context.Background(), 6)
		require.NoError(t, err)
		assert.Equal(t, "Call with client", entry.Description)
		require.NotNil(t, entry.ActivityID)
		assert.Equal(t, int64(1), *entry.ActivityID)
		assert.Equal(t, time.Date(2024, time.May, 22, 14, 0, 0, 0, time.UTC), entry.Start)
		assert.Equal(t, time.Date(2024, time.May, 22, 15, 0, 0, 0, time.UTC), entry.End)

		links, err := r.TicketTimesOf(context.Background(), []model.TimeEntry{entry})
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "OPS-3", links[0].Ticket().String())
		return nil
	})
}

func TestAmend_RangeAndDesc(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("--format", "json", "amend", "6", "10:15+0.5", "--desc", "Standup")
	require.NoError(t, err)

	amended := decodeData[LoggedTime](t, stdout)
	assert.Equal(t, "Standup", amended.Description)
	assert.Equal(t, time.Date(2024, time.May, 20, 10, 15, 0, 0, time.UTC), amended.Start)
	assert.Equal(t, time.Date(2024, time.May, 20, 10, 45, 0, 0, time.UTC), amended.End)
	require.NotNil(t, amended.Duration)
	assert.InDelta(t, 0.5, *amended.Duration, 1e-9)
}

func TestAmend_Rejected(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"single word", []string{"amend", "6", "fix"}, "E002"},
		{"nothing", []string{"amend", "6"}, "E002"},
		{"non-numeric id", []string{"amend", "six", "--desc", "x"}, "E002"},
		{"two dates", []string{"amend", "6", "2024-05-01", "2024-05-02"}, "E002"},
		{"desc twice", []string{"amend", "6", "new text", "--desc", "other"}, "E002"},
		{"unknown entry", []string{"amend", "99", "--desc", "x"}, "E005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stderr, "Error ["+tt.wantCode+"]")
		})
	}

	env.read(func(r *store.Reader) error {
		entry, err := r.TimeByID(context.Background(), 6)
		require.NoError(t, err)
		assert.Equal(t, "Unbilled call", entry.Description)
		return nil
	})
}

func TestListTime(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("--format", "json", "list", "time", "--month", "2024-05", "--unbilled")
	require.NoError(t, err)

	rows := decodeData[[]model.TimeWithTickets](t, stdout)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(6), rows[0].ID)
}

func TestListTime_Month(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("--format", "json", "list", "time", "--month", "2024-06")
	require.NoError(t, err)

	rows := decodeData[[]model.TimeWithTickets](t, stdout)
	require.Len(t, rows, 1)
	assert.Equal(t, "Review", rows[0].Description)
}

func TestListActivity(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("--format", "json", "list", "activity", "--invoice", "1")
	require.NoError(t, err)

	acts := decodeData[[]model.ActivityWithRollup](t, stdout)
	require.Len(t, acts, 3)
	assert.Equal(t, int64(1), acts[0].Number)
	assert.InDelta(t, 3.5, acts[0].TotalDuration, 1e-9)
	assert.Equal(t, []string{"OPS-1", "OPS-2", "WEB-7"}, acts[0].Tickets.Strings())
}

func TestListActivity_ExclusiveFlags(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("list", "activity", "--invoice", "1", "--month", "2024-05")
	require.Error(t, err)
}

func TestListInvoice_Text(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("list", "invoice")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NUM"))
	assert.Contains(t, lines[1], "Acme Ltd")
	assert.Contains(t, lines[2], "2024-07-01")
}

func TestAdd(t *testing.T) {
	env := newCLIEnv(t)

	steps := [][]string{
		{"add", "project", "SEC", "Security"},
		{"add", "recipient", "Initech", `4120 Freidrich Ln\nAustin`},
		{"add", "invoice", "3", "2024-07", "recip-0001", "--created", "2024-08-01"},
		{"add", "activity", "9", "3", "Pen test", "150.5"},
	}
	for _, args := range steps {
		_, _, err := env.run(args...)
		require.NoError(t, err, "%v", args)
	}

	stdout, _, err := env.run("--format", "json", "list", "invoice", "3")
	require.NoError(t, err)

	docs := decodeData[[]model.InvoiceDocument](t, stdout)
	require.Len(t, docs, 1)
	assert.Equal(t, "Initech", docs[0].Recipient.Name)
	assert.Equal(t, "recip-0001", docs[0].Recipient.ID)
	require.NotNil(t, docs[0].Created)
	assert.Equal(t, "2024-08-01", docs[0].Created.String())
	require.Len(t, docs[0].Activities, 1)
	assert.InDelta(t, 150.5, docs[0].Activities[0].UnitPrice, 1e-9)
}

func TestAdd_Rejected(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"duplicate project", []string{"add", "project", "OPS", "Again"}, "E006"},
		{"bad project key", []string{"add", "project", "1X", "Bad"}, "E002"},
		{"unknown recipient", []string{"add", "invoice", "3", "2024-07", "nobody"}, "E006"},
		{"duplicate invoice", []string{"add", "invoice", "1", "2024-07", "acme"}, "E006"},
		{"bad month", []string{"add", "invoice", "3", "July", "acme"}, "E002"},
		{"unknown invoice", []string{"add", "activity", "9", "77", "Pen test", "10"}, "E006"},
		{"negative price", []string{"add", "activity", "9", "1", "Pen test", "--", "-1"}, "E002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stderr, "Error ["+tt.wantCode+"]")
		})
	}
}
