// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

package aprs

import "time"

// PacketDTO is the public JSON shape of a packet, shared by the query
// API and the real-time subscription protocol.
type PacketDTO struct {
	ID          int64        `json:"id"`
	Sender      string       `json:"sender"`
	Destination *string      `json:"destination,omitempty"`
	Path        string       `json:"path"`
	Type        string       `json:"type"`
	Position    *PositionDTO `json:"position,omitempty"`
	Speed       *float64     `json:"speed,omitempty"`
	Course      *int         `json:"course,omitempty"`
	Weather     *WeatherDTO  `json:"weather,omitempty"`
	SentTime    *time.Time   `json:"sentTime,omitempty"`
	ReceivedAt  time.Time    `json:"receivedAt"`
	RawContent  string       `json:"rawContent"`
	Comment     *string      `json:"comment,omitempty"`
	SymbolTable *string      `json:"symbolTable,omitempty"`
	SymbolCode  *string      `json:"symbolCode,omitempty"`
}

// PositionDTO is the JSON shape of a coordinate.
type PositionDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherDTO is the JSON shape of a weather reading.
type WeatherDTO struct {
	WindDirection *int `json:"windDirection,omitempty"`
	WindSpeed     *int `json:"windSpeed,omitempty"`
	WindGust      *int `json:"windGust,omitempty"`
	Temperature   *int `json:"temperature,omitempty"`
	Rain1h        *int `json:"rain1h,omitempty"`
	Rain24h       *int `json:"rain24h,omitempty"`
	RainMidnight  *int `json:"rainMidnight,omitempty"`
	Humidity      *int `json:"humidity,omitempty"`
	Pressure      *int `json:"pressure,omitempty"`
}

// ToDTO converts a packet to its public JSON shape.
func (p *Packet) ToDTO() PacketDTO {
	dto := PacketDTO{
		ID:          p.ID,
		Sender:      p.Sender.Value,
		Path:        p.Path,
		Type:        string(p.Type),
		Speed:       p.Speed,
		Course:      p.Course,
		SentTime:    p.SentTime,
		ReceivedAt:  p.ReceivedAt,
		RawContent:  p.RawContent,
		Comment:     p.Comment,
		SymbolTable: p.SymbolTable,
		SymbolCode:  p.SymbolCode,
	}
	if p.Destination != nil {
		v := p.Destination.Value
		dto.Destination = &v
	}
	if p.Position != nil {
		dto.Position = &PositionDTO{Latitude: p.Position.Latitude, Longitude: p.Position.Longitude}
	}
	if p.Weather.HasReading() {
		dto.Weather = &WeatherDTO{
			WindDirection: p.Weather.WindDirection,
			WindSpeed:     p.Weather.WindSpeed,
			WindGust:      p.Weather.WindGust,
			Temperature:   p.Weather.Temperature,
			Rain1h:        p.Weather.Rain1h,
			Rain24h:       p.Weather.Rain24h,
			RainMidnight:  p.Weather.RainMidnight,
			Humidity:      p.Weather.Humidity,
			Pressure:      p.Weather.Pressure,
		}
	}
	return dto
}
