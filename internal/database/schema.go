// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the packets table and its indexes. Idempotent
// so startup against an existing database is a no-op.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS packets_id_seq`,
	`CREATE TABLE IF NOT EXISTS packets (
		id               BIGINT PRIMARY KEY DEFAULT nextval('packets_id_seq'),
		sender_callsign  VARCHAR NOT NULL,
		sender_base      VARCHAR NOT NULL,
		sender_ssid      INTEGER NOT NULL,
		dest_callsign    VARCHAR,
		dest_base        VARCHAR,
		dest_ssid        INTEGER,
		path             VARCHAR NOT NULL DEFAULT '',
		type             VARCHAR NOT NULL,
		latitude         DOUBLE,
		longitude        DOUBLE,
		speed            DOUBLE,
		course           INTEGER,
		wx_wind_direction INTEGER,
		wx_wind_speed    INTEGER,
		wx_wind_gust     INTEGER,
		wx_temperature   INTEGER,
		wx_rain_1h       INTEGER,
		wx_rain_24h      INTEGER,
		wx_rain_midnight INTEGER,
		wx_humidity      INTEGER,
		wx_pressure      INTEGER,
		sent_time        TIMESTAMP,
		received_at      TIMESTAMP NOT NULL,
		raw_content      VARCHAR NOT NULL,
		comment          VARCHAR,
		symbol_table     VARCHAR,
		symbol_code      VARCHAR
	)`,
	`CREATE INDEX IF NOT EXISTS idx_packets_received_at ON packets (received_at)`,
	`CREATE INDEX IF NOT EXISTS idx_packets_sender ON packets (sender_callsign)`,
	`CREATE INDEX IF NOT EXISTS idx_packets_type ON packets (type)`,
	`CREATE INDEX IF NOT EXISTS idx_packets_latitude ON packets (latitude)`,
	`CREATE INDEX IF NOT EXISTS idx_packets_longitude ON packets (longitude)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
