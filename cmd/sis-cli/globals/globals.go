package globals

import (
	"context"

	"sisassist-backend/cmd/sis-cli/config"
	"sisassist-backend/internal/components/chrono"
	"sisassist-backend/internal/components/telemetry"
	"sisassist-backend/internal/store"
	"sisassist-backend/pkg/restyutil"
)

type key struct{}

type Value struct {
	Config config.Config
	Tel    telemetry.API
	Clock  chrono.API
	Store  store.Store
	// Dump is nil unless http dumps were requested.
	Dump restyutil.Output
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
