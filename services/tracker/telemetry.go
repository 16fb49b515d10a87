package tracker

import "waterpolo-tracker/lib/telemetry"

var tracer = telemetry.Tracer("wptracker.services.tracker")
