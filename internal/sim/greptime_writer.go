package sim

import (
	"context"
	"log"
	"net"
	"strconv"

	"tactimesh/internal/comms"
	"tactimesh/internal/unit"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeDBWriter writes tracks and messages to GreptimeDB via the
// ingester client. Tables are auto-created by the server on first write.
type GreptimeDBWriter struct {
	client   *greptime.Client
	tracks   string
	messages string
}

// NewGreptimeDBWriter creates a writer connected to the given endpoint.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port := splitEndpoint(endpoint)
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port > 0 {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:   client,
		tracks:   unit.TrackTableName,
		messages: comms.MessageTableName,
	}, nil
}

// splitEndpoint separates "host:port"; a missing or unparsable port yields 0
// so the client default applies.
func splitEndpoint(endpoint string) (string, int) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return endpoint, 0
	}
	return host, port
}

// trackTable builds one ingest table from a batch of track rows.
func (w *GreptimeDBWriter) trackTable(rows []unit.TrackRow) (*table.Table, error) {
	tbl, err := table.New(w.tracks)
	if err != nil {
		return nil, err
	}
	if err := tbl.AddTagColumn("mission_id", types.STRING); err != nil {
		return nil, err
	}
	if err := tbl.AddTagColumn("callsign", types.STRING); err != nil {
		return nil, err
	}
	for _, col := range []string{"unit", "role"} {
		if err := tbl.AddFieldColumn(col, types.STRING); err != nil {
			return nil, err
		}
	}
	for _, col := range []string{"lat", "lon"} {
		if err := tbl.AddFieldColumn(col, types.FLOAT64); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddFieldColumn("grid", types.STRING); err != nil {
		return nil, err
	}
	for _, col := range []string{"battery", "signal"} {
		if err := tbl.AddFieldColumn(col, types.INT64); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddFieldColumn("status", types.STRING); err != nil {
		return nil, err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}

	for _, r := range rows {
		err := tbl.AddRow(r.MissionID, r.Callsign, r.Unit, r.Role,
			r.Lat, r.Lon, r.Grid, int64(r.Battery), int64(r.Signal),
			string(r.Status), r.Timestamp)
		if err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// messageTable builds one ingest table from a tactical message.
func (w *GreptimeDBWriter) messageTable(m comms.Message) (*table.Table, error) {
	tbl, err := table.New(w.messages)
	if err != nil {
		return nil, err
	}
	if err := tbl.AddTagColumn("sender", types.STRING); err != nil {
		return nil, err
	}
	if err := tbl.AddTagColumn("recipient", types.STRING); err != nil {
		return nil, err
	}
	if err := tbl.AddFieldColumn("msg_id", types.INT64); err != nil {
		return nil, err
	}
	if err := tbl.AddFieldColumn("msg_type", types.STRING); err != nil {
		return nil, err
	}
	if err := tbl.AddFieldColumn("priority", types.INT64); err != nil {
		return nil, err
	}
	if err := tbl.AddFieldColumn("content", types.STRING); err != nil {
		return nil, err
	}
	if err := tbl.AddFieldColumn("acknowledged", types.BOOLEAN); err != nil {
		return nil, err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}

	err = tbl.AddRow(m.Sender, m.Recipient, int64(m.ID), string(m.Type),
		int64(m.Priority), m.Content, m.Acknowledged, m.Timestamp)
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

// WriteTrack inserts a single track row.
func (w *GreptimeDBWriter) WriteTrack(row unit.TrackRow) error {
	return w.WriteTracks([]unit.TrackRow{row})
}

// WriteTracks inserts multiple track rows.
func (w *GreptimeDBWriter) WriteTracks(rows []unit.TrackRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := w.trackTable(rows)
	if err != nil {
		return err
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] track write failed: %v", err)
		return err
	}
	return nil
}

// WriteMessage inserts a tactical message row.
func (w *GreptimeDBWriter) WriteMessage(m comms.Message) error {
	tbl, err := w.messageTable(m)
	if err != nil {
		return err
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] message write failed: %v", err)
		return err
	}
	return nil
}
