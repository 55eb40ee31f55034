package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP fields.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Domain fields.

func OrgID(v string) zap.Field       { return zap.String("org_id", v) }
func UserID(v string) zap.Field      { return zap.String("user_id", v) }
func SchemeID(v string) zap.Field    { return zap.String("scheme_id", v) }
func SchemeCode(v string) zap.Field  { return zap.String("scheme_code", v) }
func DeviceID(v string) zap.Field    { return zap.String("device_id", v) }
func Fingerprint(v string) zap.Field { return zap.String("fingerprint", v) }

// System fields.

func Op(v string) zap.Field           { return zap.String("op", v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
func Layer(v string) zap.Field        { return zap.String("layer", v) }
func Err(err error) zap.Field         { return zap.Error(err) }
func Count(v int) zap.Field           { return zap.Int("count", v) }

func String(key, v string) zap.Field  { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
