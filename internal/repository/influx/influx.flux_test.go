package influx

import (
	"strings"
	"testing"
	"time"
)

func TestLastRowQueryShape(t *testing.T) {
	q := lastRowQuery("telemetry", "gps", "dev1", 7*24*time.Hour,
		[]string{"lat", "lon", "alt_m", "vel_kmh", "sats", "hdop"})

	for _, want := range []string{
		`from(bucket: "telemetry")`,
		`range(start: -604800s)`,
		`r._measurement == "gps" and r.device_id == "dev1"`,
		`pivot(rowKey:["_time"], columnKey:["_field"], valueColumn:"_value")`,
		`keep(columns: ["_time","device_id","lat","lon","alt_m","vel_kmh","sats","hdop"])`,
		`sort(columns: ["_time"], desc: true)`,
		`limit(n: 1)`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
}

func TestLastRowQueryEscapesDeviceID(t *testing.T) {
	q := lastRowQuery("telemetry", "gps", `dev"1`, time.Hour, []string{"lat"})

	if strings.Contains(q, `r.device_id == "dev"1"`) {
		t.Fatalf("device id quote not escaped:\n%s", q)
	}
	if !strings.Contains(q, `r.device_id == "dev\"1"`) {
		t.Fatalf("expected escaped device id:\n%s", q)
	}
}

func TestColumnConversions(t *testing.T) {
	values := map[string]interface{}{
		"lat":  10.5,
		"sats": int64(7),
	}

	if v := floatColumn(values, "lat"); v == nil || *v != 10.5 {
		t.Fatalf("lat=%v want=10.5", v)
	}
	if v := floatColumn(values, "sats"); v == nil || *v != 7.0 {
		t.Fatalf("integer sample should convert to float, got %v", v)
	}
	if v := floatColumn(values, "missing"); v != nil {
		t.Fatalf("missing column should be nil, got %v", *v)
	}
	if v := intColumn(values, "sats"); v == nil || *v != 7 {
		t.Fatalf("sats=%v want=7", v)
	}
	if v := intColumn(values, "missing"); v != nil {
		t.Fatalf("missing column should be nil, got %v", *v)
	}
}
