package queryir

// Kind is the storage kind of a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
	KindDate
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	case KindDate:
		return "DATE"
	case KindTimestamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}

// Table names.
const (
	TableProject    = "project"
	TableTicket     = "ticket"
	TableRecipient  = "recipient"
	TableInvoice    = "invoice"
	TableActivity   = "invoice_activity"
	TableTime       = "time"
	TableTicketTime = "ticket_time"
)

// Column describes one persisted column.
type Column struct {
	Name string
	Kind Kind
}

// Table describes a persisted table. Columns are listed in scan order.
// OrderBy is the stable sort key every load of the table uses.
type Table struct {
	Name    string
	Columns []Column
	OrderBy []string
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames lists the columns in scan order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// rowid is accepted as an ordering key: it is the insertion order of
// tables that don't declare an integer primary key.
const rowid = "rowid"

// Catalog lists every table loads may reference.
var Catalog = map[string]Table{
	TableProject: {
		Name: TableProject,
		Columns: []Column{
			{"proj_key", KindText},
			{"proj_name", KindText},
		},
		OrderBy: []string{"proj_key"},
	},
	TableTicket: {
		Name: TableTicket,
		Columns: []Column{
			{"proj_key", KindText},
			{"tick_num", KindInteger},
		},
		OrderBy: []string{"proj_key", "tick_num"},
	},
	TableRecipient: {
		Name: TableRecipient,
		Columns: []Column{
			{"recip_id", KindText},
			{"recip_name", KindText},
			{"recip_addr", KindText},
		},
		OrderBy: []string{"recip_id"},
	},
	TableInvoice: {
		Name: TableInvoice,
		Columns: []Column{
			{"inv_num", KindInteger},
			{"inv_month", KindDate},
			{"inv_created", KindDate},
			{"recip_id", KindText},
		},
		OrderBy: []string{"inv_num"},
	},
	TableActivity: {
		Name: TableActivity,
		Columns: []Column{
			{"act_num", KindInteger},
			{"inv_num", KindInteger},
			{"act_desc", KindText},
			{"act_uprice", KindReal},
		},
		OrderBy: []string{"act_num"},
	},
	TableTime: {
		Name: TableTime,
		Columns: []Column{
			{"time_id", KindInteger},
			{"time_start", KindTimestamp},
			{"time_end", KindTimestamp},
			{"time_desc", KindText},
			{"time_dur", KindReal},
			{"act_num", KindInteger},
		},
		OrderBy: []string{"time_start", "time_id"},
	},
	TableTicketTime: {
		Name: TableTicketTime,
		Columns: []Column{
			{"proj_key", KindText},
			{"tick_num", KindInteger},
			{"time_id", KindInteger},
		},
		OrderBy: []string{"time_id", rowid},
	},
}

// Lookup returns the catalog entry for a table.
func Lookup(name string) (Table, bool) {
	t, ok := Catalog[name]
	return t, ok
}
