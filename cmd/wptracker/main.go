package main

import (
	"context"
	"waterpolo-tracker/cmd/wptracker/commands"
	"waterpolo-tracker/lib/serviceutil"
	"waterpolo-tracker/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	err := telemetry.SetupFromEnv(context.Background(), "wptracker")
	if err != nil {
		serviceutil.Fatal("failed to initialize telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
