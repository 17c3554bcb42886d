package schema

import (
	"context"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/domain/fuel"
	"fuelbook/pkg/logger"
)

// Validate checks a proposed write against the record kind's contract.
//
// Any field present in the payload but absent from the kind's permitted set
// is a phantom field and causes immediate rejection. If the kind carries a
// fuel-type field and the payload sets it, the value must belong to the
// kind's fuel range; other enum-constrained fields are checked the same way.
// Rejections are logged with the full attempted payload for forensic review.
func Validate(ctx context.Context, kind RecordKind, fields map[string]any) error {
	def, ok := DefinitionFor(kind)
	if !ok {
		err := apperror.NewSchemaViolation(string(kind), "").
			WithDetail("reason", "unknown record kind")
		logRejection(ctx, kind, fields, err)
		return err
	}

	permitted := make(map[string]struct{}, len(def.Fields))
	for _, f := range def.Fields {
		permitted[f] = struct{}{}
	}

	for name := range fields {
		if _, ok := permitted[name]; !ok {
			err := apperror.NewSchemaViolation(string(kind), name)
			logRejection(ctx, kind, fields, err)
			return err
		}
	}

	if def.FuelField != "" {
		if raw, present := fields[def.FuelField]; present && raw != nil {
			if err := validateFuel(def, raw); err != nil {
				logRejection(ctx, kind, fields, err)
				return err
			}
		}
	}

	for field, allowed := range def.EnumFields {
		raw, present := fields[field]
		if !present || raw == nil {
			continue
		}
		if !enumContains(allowed, asString(raw)) {
			err := apperror.NewEnumViolation(string(kind), field, raw)
			logRejection(ctx, kind, fields, err)
			return err
		}
	}

	return nil
}

func validateFuel(def Definition, raw any) error {
	ft := fuel.Type(asString(raw))

	valid := false
	switch def.FuelRange {
	case FuelRangeFull:
		valid = ft.Valid()
	case FuelRangeLegacy:
		valid = ft.ValidLegacy()
	}

	if !valid {
		return apperror.NewEnumViolation(string(def.Kind), def.FuelField, raw)
	}
	return nil
}

func enumContains(allowed []string, v string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fuel.Type:
		return string(s)
	default:
		type stringer interface{ String() string }
		if st, ok := v.(stringer); ok {
			return st.String()
		}
		return ""
	}
}

func logRejection(ctx context.Context, kind RecordKind, fields map[string]any, err error) {
	logger.Warn(ctx, "schema gate rejected write",
		"record_kind", kind,
		"payload", fields,
		"error", err,
	)
}
