// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/radiograph/internal/aprs"
	"github.com/tomtom215/radiograph/internal/metrics"
)

// SearchFilter narrows a packet search. Zero values mean "no filter".
// Page is 1-indexed.
type SearchFilter struct {
	// Sender matches the full callsign value or the base, so a base
	// query returns every SSID variant.
	Sender string
	Type   string
	From   *time.Time
	To     *time.Time

	Page     int
	PageSize int
}

const packetColumns = `id, sender_callsign, sender_base, sender_ssid,
	dest_callsign, dest_base, dest_ssid, path, type,
	latitude, longitude, speed, course,
	wx_wind_direction, wx_wind_speed, wx_wind_gust, wx_temperature,
	wx_rain_1h, wx_rain_24h, wx_rain_midnight, wx_humidity, wx_pressure,
	sent_time, received_at, raw_content, comment, symbol_table, symbol_code`

// AddPacket persists p, assigns its store identity and returns it.
func (db *DB) AddPacket(ctx context.Context, p *aprs.Packet) (*aprs.Packet, error) {
	start := time.Now()

	var destCallsign, destBase interface{}
	var destSSID interface{}
	if p.Destination != nil {
		destCallsign = p.Destination.Value
		destBase = p.Destination.Base
		destSSID = p.Destination.SSID
	}
	var lat, lon interface{}
	if p.Position != nil {
		lat = p.Position.Latitude
		lon = p.Position.Longitude
	}
	wx := p.Weather
	if wx == nil {
		wx = &aprs.WeatherData{}
	}

	row := db.conn.QueryRowContext(ctx, `INSERT INTO packets (
		sender_callsign, sender_base, sender_ssid,
		dest_callsign, dest_base, dest_ssid, path, type,
		latitude, longitude, speed, course,
		wx_wind_direction, wx_wind_speed, wx_wind_gust, wx_temperature,
		wx_rain_1h, wx_rain_24h, wx_rain_midnight, wx_humidity, wx_pressure,
		sent_time, received_at, raw_content, comment, symbol_table, symbol_code
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`,
		p.Sender.Value, p.Sender.Base, p.Sender.SSID,
		destCallsign, destBase, destSSID, p.Path, string(p.Type),
		lat, lon, p.Speed, p.Course,
		wx.WindDirection, wx.WindSpeed, wx.WindGust, wx.Temperature,
		wx.Rain1h, wx.Rain24h, wx.RainMidnight, wx.Humidity, wx.Pressure,
		p.SentTime, p.ReceivedAt, p.RawContent, p.Comment, p.SymbolTable, p.SymbolCode,
	)

	err := row.Scan(&p.ID)
	metrics.RecordDBQuery("add_packet", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("insert packet: %w", err)
	}
	return p, nil
}

// GetPacketByID returns the packet with the given identity, or
// aprs.ErrNotFound.
func (db *DB) GetPacketByID(ctx context.Context, id int64) (*aprs.Packet, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+packetColumns+` FROM packets WHERE id = ?`, id)

	p, err := scanPacket(row)
	metrics.RecordDBQuery("get_packet", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: packet %d", aprs.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get packet %d: %w", id, err)
	}
	return p, nil
}

// SearchPackets returns one page of the filtered set ordered by
// received_at descending with id descending as the tiebreak, plus the
// total match count.
func (db *DB) SearchPackets(ctx context.Context, f SearchFilter) ([]*aprs.Packet, int64, error) {
	if f.Page < 1 || f.PageSize < 1 {
		return nil, 0, fmt.Errorf("%w: page and page size must be at least 1", aprs.ErrValidation)
	}
	where, args := buildSearchWhere(f)

	start := time.Now()
	var total int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM packets"+where, args...).Scan(&total)
	if err != nil {
		metrics.RecordDBQuery("search_packets", time.Since(start), err)
		return nil, 0, fmt.Errorf("count packets: %w", err)
	}

	query := "SELECT " + packetColumns + " FROM packets" + where +
		" ORDER BY received_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := db.conn.QueryContext(ctx, query, append(args, f.PageSize, (f.Page-1)*f.PageSize)...)
	if err != nil {
		metrics.RecordDBQuery("search_packets", time.Since(start), err)
		return nil, 0, fmt.Errorf("search packets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var packets []*aprs.Packet
	for rows.Next() {
		p, err := scanPacket(rows)
		if err != nil {
			metrics.RecordDBQuery("search_packets", time.Since(start), err)
			return nil, 0, fmt.Errorf("scan packet: %w", err)
		}
		packets = append(packets, p)
	}
	err = rows.Err()
	metrics.RecordDBQuery("search_packets", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("search packets: %w", err)
	}
	return packets, total, nil
}

// buildSearchWhere renders the WHERE clause and its arguments for a
// filter. Pure, so ordering and parameter layout are unit-testable.
func buildSearchWhere(f SearchFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Sender != "" {
		conds = append(conds, "(sender_callsign = ? OR sender_base = ?)")
		args = append(args, f.Sender, f.Sender)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.From != nil {
		conds = append(conds, "received_at >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		conds = append(conds, "received_at <= ?")
		args = append(args, *f.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPacket(row rowScanner) (*aprs.Packet, error) {
	var (
		p            aprs.Packet
		destCallsign sql.NullString
		destBase     sql.NullString
		destSSID     sql.NullInt64
		lat, lon     sql.NullFloat64
		speed        sql.NullFloat64
		course       sql.NullInt64
		wxFields     [9]sql.NullInt64
		sentTime     sql.NullTime
		comment      sql.NullString
		symbolTable  sql.NullString
		symbolCode   sql.NullString
		pktType      string
	)

	err := row.Scan(
		&p.ID, &p.Sender.Value, &p.Sender.Base, &p.Sender.SSID,
		&destCallsign, &destBase, &destSSID, &p.Path, &pktType,
		&lat, &lon, &speed, &course,
		&wxFields[0], &wxFields[1], &wxFields[2], &wxFields[3],
		&wxFields[4], &wxFields[5], &wxFields[6], &wxFields[7], &wxFields[8],
		&sentTime, &p.ReceivedAt, &p.RawContent, &comment, &symbolTable, &symbolCode,
	)
	if err != nil {
		return nil, err
	}

	p.Type = aprs.PacketType(pktType)
	if destCallsign.Valid {
		p.Destination = &aprs.Callsign{
			Value: destCallsign.String,
			Base:  destBase.String,
			SSID:  int(destSSID.Int64),
		}
	}
	if lat.Valid && lon.Valid {
		pos, err := aprs.NewCoordinate(lat.Float64, lon.Float64)
		if err != nil {
			return nil, fmt.Errorf("stored position: %w", err)
		}
		p.Position = &pos
	}
	if speed.Valid {
		v := speed.Float64
		p.Speed = &v
	}
	if course.Valid {
		v := int(course.Int64)
		p.Course = &v
	}

	wx := aprs.WeatherData{
		WindDirection: nullableInt(wxFields[0]),
		WindSpeed:     nullableInt(wxFields[1]),
		WindGust:      nullableInt(wxFields[2]),
		Temperature:   nullableInt(wxFields[3]),
		Rain1h:        nullableInt(wxFields[4]),
		Rain24h:       nullableInt(wxFields[5]),
		RainMidnight:  nullableInt(wxFields[6]),
		Humidity:      nullableInt(wxFields[7]),
		Pressure:      nullableInt(wxFields[8]),
	}
	if wx.HasReading() {
		p.Weather = &wx
	}

	if sentTime.Valid {
		t := sentTime.Time.UTC()
		p.SentTime = &t
	}
	p.ReceivedAt = p.ReceivedAt.UTC()
	if comment.Valid {
		p.Comment = &comment.String
	}
	if symbolTable.Valid {
		p.SymbolTable = &symbolTable.String
	}
	if symbolCode.Valid {
		p.SymbolCode = &symbolCode.String
	}
	return &p, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
