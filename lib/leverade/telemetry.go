package leverade

import "waterpolo-tracker/lib/telemetry"

var tracer = telemetry.Tracer("wptracker.lib.leverade")
