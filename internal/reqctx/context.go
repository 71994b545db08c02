package reqctx

import "context"

type ctxKey string

const (
	keyRID       ctxKey = "req_rid"
	keyVehicleID ctxKey = "req_vehicle_id"
)

// WithRID stores the correlation id used in AI suggestion logs.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns the correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithVehicleID stores the vehicle id for AI suggestion logs.
func WithVehicleID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyVehicleID, id)
}

// VehicleID returns the vehicle id if present.
func VehicleID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyVehicleID).(uint64)
	return v
}
