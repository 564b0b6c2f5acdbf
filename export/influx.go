// Package export ships sensor readings to external stores.
package export

import (
	"context"
	"fmt"
	"maps"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mklimuk/moisture/chirp"
)

const DefaultMeasurement = "soil"

type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
	Tags        map[string]string
}

// Influx writes readings to InfluxDB 2.x, one point per reading.
type Influx struct {
	client      influxdb2.Client
	writer      api.WriteAPIBlocking
	measurement string
	tags        map[string]string
}

func NewInflux(cfg InfluxConfig) *Influx {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return newInflux(client, client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg)
}

func newInflux(client influxdb2.Client, writer api.WriteAPIBlocking, cfg InfluxConfig) *Influx {
	measurement := cfg.Measurement
	if measurement == "" {
		measurement = DefaultMeasurement
	}
	return &Influx{
		client:      client,
		writer:      writer,
		measurement: measurement,
		tags:        cfg.Tags,
	}
}

func (i *Influx) Write(ctx context.Context, r chirp.Reading) error {
	err := i.writer.WritePoint(ctx, i.point(r))
	if err != nil {
		return fmt.Errorf("influx: could not write point: %w", err)
	}
	return nil
}

func (i *Influx) point(r chirp.Reading) *write.Point {
	tags := make(map[string]string, len(i.tags)+1)
	maps.Copy(tags, i.tags)
	tags["address"] = fmt.Sprintf("%#x", r.Address)
	fields := map[string]interface{}{
		"capacitance": int64(r.Capacitance),
		"temperature": float64(r.Celsius()),
	}
	if r.HasLight {
		fields["light"] = int64(r.Light)
	}
	return influxdb2.NewPoint(i.measurement, tags, fields, r.Time)
}

func (i *Influx) Close() {
	if i.client != nil {
		i.client.Close()
	}
}
