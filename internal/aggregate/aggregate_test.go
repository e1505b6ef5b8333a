package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

func day(d, hour int) time.Time {
	return time.Date(2024, time.May, d, hour, 0, 0, 0, time.UTC)
}

// fixture: invoice 1 with activities loaded as [5, 1, 3]; activity 1 has
// three entries with durations [2.5, absent, 1.0] and tickets
// [B-2, A-1] / [A-1] / [B-2]; activity 3 has none; activity 5 has one.
func fixture() *fakeAccessor {
	return &fakeAccessor{
		invoices: []model.InvoiceRecipient{invoiceRow(1)},
		activities: []model.Activity{
			{Number: 5, InvoiceNumber: 1, Description: "support", UnitPrice: 80},
			{Number: 1, InvoiceNumber: 1, Description: "build", UnitPrice: 100},
			{Number: 3, InvoiceNumber: 1, Description: "idle", UnitPrice: 50},
		},
		times: []model.TimeEntry{
			{ID: 10, Start: day(1, 9), End: day(1, 11), Duration: ptr(2.5), ActivityID: ptr[int64](1)},
			{ID: 11, Start: day(2, 9), End: day(2, 10), ActivityID: ptr[int64](1)},
			{ID: 12, Start: day(3, 9), End: day(3, 10), Duration: ptr(1.0), ActivityID: ptr[int64](1)},
			{ID: 13, Start: day(1, 8), End: day(1, 9), Duration: ptr(0.5), ActivityID: ptr[int64](5)},
			{ID: 14, Start: day(4, 8), End: day(4, 9), Duration: ptr(4.0)},
		},
		ticketTimes: []model.TicketTime{
			tt("B", 2, 10), tt("A", 1, 10),
			tt("A", 1, 11),
			tt("B", 2, 12),
		},
	}
}

func TestBuildTimes_AttachesTicketsInLoadOrder(t *testing.T) {
	acc := fixture()

	times, err := BuildTimes(context.Background(), acc, acc.times)
	require.NoError(t, err)

	require.Len(t, times, len(acc.times))
	assert.Equal(t, []model.Ticket{ticket("B", 2), ticket("A", 1)}, times[0].Tickets)
	assert.Equal(t, []model.Ticket{ticket("A", 1)}, times[1].Tickets)
	assert.NotNil(t, times[4].Tickets)
	assert.Empty(t, times[4].Tickets)
	assert.Equal(t, []string{"TicketTimesOf"}, acc.calls)
}

func TestBuildActivities_Rollup(t *testing.T) {
	acc := fixture()

	acts, err := BuildActivities(context.Background(), acc, acc.activities)
	require.NoError(t, err)
	require.Len(t, acts, 3)

	// input order is kept
	assert.Equal(t, int64(5), acts[0].Number)
	assert.Equal(t, int64(1), acts[1].Number)
	assert.Equal(t, int64(3), acts[2].Number)

	build := acts[1]
	assert.InDelta(t, 3.5, build.TotalDuration, 1e-9)
	assert.Equal(t, model.TicketSet{ticket("A", 1), ticket("B", 2)}, build.Tickets)
	assert.Len(t, build.Times, 3)

	idle := acts[2]
	assert.Equal(t, 0.0, idle.TotalDuration)
	assert.NotNil(t, idle.Tickets)
	assert.Empty(t, idle.Tickets)
	assert.NotNil(t, idle.Times)
	assert.Empty(t, idle.Times)
}

func TestBuildActivities_AllDurationsAbsent(t *testing.T) {
	acc := &fakeAccessor{
		activities: []model.Activity{{Number: 1}},
		times: []model.TimeEntry{
			{ID: 1, ActivityID: ptr[int64](1)},
			{ID: 2, ActivityID: ptr[int64](1)},
		},
	}

	acts, err := BuildActivities(context.Background(), acc, acc.activities)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, 0.0, acts[0].TotalDuration)
	assert.Len(t, acts[0].Times, 2)
}

func TestBuildInvoiceDocuments_OrdersActivities(t *testing.T) {
	acc := fixture()

	docs, err := BuildInvoiceDocuments(context.Background(), acc, InvoiceByNumber(1))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, int64(1), doc.Number)
	assert.Equal(t, "Acme Ltd", doc.Recipient.Name)

	var nums []int64
	for _, a := range doc.Activities {
		nums = append(nums, a.Number)
	}
	assert.Equal(t, []int64{1, 3, 5}, nums)
	assert.InDelta(t, 4.0, doc.TotalDuration(), 1e-9)
}

func TestBuildInvoiceDocuments_RoundTrips(t *testing.T) {
	acc := fixture()

	_, err := BuildInvoiceDocuments(context.Background(), acc, InvoiceByNumber(1))
	require.NoError(t, err)

	assert.Equal(t, []string{"LoadInvoices", "ActivitiesOf", "TimesOf", "TicketTimesOf"}, acc.calls)
}

func TestBuildInvoiceDocuments_ManyInvoices(t *testing.T) {
	acc := fixture()
	acc.invoices = append(acc.invoices, invoiceRow(2))
	acc.activities = append(acc.activities, model.Activity{Number: 2, InvoiceNumber: 2})

	docs, err := BuildInvoiceDocuments(context.Background(), acc, AllInvoices())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Len(t, docs[0].Activities, 3)
	require.Len(t, docs[1].Activities, 1)
	assert.Equal(t, int64(2), docs[1].Activities[0].Number)
	assert.Len(t, acc.calls, 4, "round trips don't grow with cardinality")
}

func TestBuildInvoiceDocuments_InvoiceWithoutActivities(t *testing.T) {
	acc := &fakeAccessor{invoices: []model.InvoiceRecipient{invoiceRow(7)}}

	docs, err := BuildInvoiceDocuments(context.Background(), acc, InvoiceByNumber(7))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotNil(t, docs[0].Activities)
	assert.Empty(t, docs[0].Activities)
}

func TestBuildInvoiceDocuments_LoadFailureAborts(t *testing.T) {
	phases := map[string]struct {
		entity string
		phase  string
	}{
		"LoadInvoices":  {queryir.TableInvoice, PhaseFlat},
		"ActivitiesOf":  {queryir.TableActivity, PhaseBelongingTo},
		"TimesOf":       {queryir.TableTime, PhaseBelongingTo},
		"TicketTimesOf": {queryir.TableTicketTime, PhaseBelongingTo},
	}

	for call, want := range phases {
		t.Run(call, func(t *testing.T) {
			acc := fixture()
			acc.failOn = call

			docs, err := BuildInvoiceDocuments(context.Background(), acc, InvoiceByNumber(1))
			require.Error(t, err)
			assert.Nil(t, docs)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, want.entity, loadErr.Entity)
			assert.Equal(t, want.phase, loadErr.Phase)
			assert.ErrorIs(t, err, errStore)
			assert.True(t, IsLoadError(err))
			assert.False(t, IsIdentificationError(err))
		})
	}
}

func TestBuildInvoiceDocuments_FilterByNumber(t *testing.T) {
	acc := fixture()
	acc.invoices = append(acc.invoices, invoiceRow(2))
	acc.matchInvoice = func(p queryir.Predicate, row model.InvoiceRecipient) bool {
		eq := p.(queryir.Equals)
		return int64(eq.Value.(queryir.Int)) == row.Invoice.Number
	}

	for _, n := range []int64{1, 2, 3} {
		docs, err := BuildInvoiceDocuments(context.Background(), acc, InvoiceByNumber(n))
		require.NoError(t, err)
		if n == 3 {
			assert.Empty(t, docs)
			continue
		}
		require.Len(t, docs, 1)
		assert.Equal(t, n, docs[0].Number)
	}
}

func TestExactlyOne(t *testing.T) {
	docs := []model.InvoiceDocument{{Invoice: model.Invoice{Number: 1}}}

	got, err := ExactlyOne("invoice", InvoiceByNumber(1), docs)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Number)

	_, err = ExactlyOne("invoice", InvoiceByNumber(9), []model.InvoiceDocument{})
	require.Error(t, err)
	assert.True(t, IsIdentificationError(err))
	assert.Contains(t, err.Error(), "identifier 9 failed to uniquely identify an invoice")

	var idErr *IdentificationError
	_, err = ExactlyOne("invoice", InvoiceByMonth(model.NewMonth(2024, time.May)), append(docs, docs...))
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, 2, idErr.Count)
	assert.Equal(t, "2024-05", idErr.Ident)
}

func TestBuildActivityRollups_ByInvoice(t *testing.T) {
	acc := fixture()

	acts, err := BuildActivityRollups(context.Background(), acc, ActivitiesOfInvoice(1))
	require.NoError(t, err)

	require.Len(t, acts, 3)
	assert.Equal(t, int64(1), acts[0].Number)
	assert.Equal(t, int64(5), acts[2].Number)
	assert.Equal(t, []string{"LoadActivities", "TimesOf", "TicketTimesOf"}, acc.calls)
}

func TestBuildActivityRollups_ByMonth(t *testing.T) {
	acc := fixture()

	acts, err := BuildActivityRollups(context.Background(), acc, ActivitiesInMonth(model.NewMonth(2024, time.May)))
	require.NoError(t, err)

	assert.Len(t, acts, 3)
	assert.Equal(t, []string{"LoadInvoices", "ActivitiesOf", "TimesOf", "TicketTimesOf"}, acc.calls)
}

func TestBuildActivityRollups_FlatFailure(t *testing.T) {
	acc := fixture()
	acc.failOn = "LoadActivities"

	_, err := BuildActivityRollups(context.Background(), acc, AllActivities())
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, PhaseFlat, loadErr.Phase)
	assert.Equal(t, queryir.TableActivity, loadErr.Entity)
}

func TestBuildTimeListing(t *testing.T) {
	acc := fixture()

	times, err := BuildTimeListing(context.Background(), acc, AllTimes())
	require.NoError(t, err)

	assert.Len(t, times, 5)
	assert.Equal(t, []string{"LoadTimes", "TicketTimesOf"}, acc.calls)
}

func TestTimesheet_OrderedByStartThenID(t *testing.T) {
	acc := fixture()
	acc.times = append(acc.times, model.TimeEntry{ID: 9, Start: day(1, 9), End: day(1, 10), ActivityID: ptr[int64](5)})

	docs, err := BuildInvoiceDocuments(context.Background(), acc, InvoiceByNumber(1))
	require.NoError(t, err)

	rows := Timesheet(docs[0])
	var ids []int64
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{13, 9, 10, 11, 12}, ids)
}

func TestTimesheet_Empty(t *testing.T) {
	rows := Timesheet(model.InvoiceDocument{})
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
