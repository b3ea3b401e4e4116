// FilePath: internal/repository/influx/influx.flux.go
package influx

import (
	"fmt"
	"strings"
	"time"
)

// lastRowQuery builds the Flux query for "latest value" semantics: scan
// the lookback window, keep only the device's points for one measurement,
// pivot fields into columns, project the known columns, newest first,
// one row.
func lastRowQuery(bucket, measurement, deviceID string, lookback time.Duration, columns []string) string {
	keep := make([]string, 0, len(columns)+2)
	keep = append(keep, `"_time"`, `"device_id"`)
	for _, c := range columns {
		keep = append(keep, fmt.Sprintf("%q", c))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %q)\n", bucket)
	fmt.Fprintf(&b, "  |> range(start: -%ds)\n", int64(lookback.Seconds()))
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %q and r.device_id == %q)\n",
		measurement, deviceID)
	b.WriteString("  |> pivot(rowKey:[\"_time\"], columnKey:[\"_field\"], valueColumn:\"_value\")\n")
	fmt.Fprintf(&b, "  |> keep(columns: [%s])\n", strings.Join(keep, ","))
	b.WriteString("  |> sort(columns: [\"_time\"], desc: true)\n")
	b.WriteString("  |> limit(n: 1)\n")
	return b.String()
}
