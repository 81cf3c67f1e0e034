package gqlcore

// ResolveInfo is passed to Extension.ResolveFieldStart/End around every
// field unit: ResolveFieldStart fires with a populated ResolveInfo
// before the field's own resolution runs, and ResolveFieldEnd fires
// with the matching resolve id after.
type ResolveInfo struct {
	ResolveID  uint64
	Path       []interface{}
	ParentType string
	ReturnType string
	FieldName  string
}

// Extension is the lifecycle hook surface the resolver engine drives.
// A *zap.Logger-backed implementation (loggingExtension, schema.go)
// ships with this module as the ambient observability layer; callers
// may supply additional extensions (tracing, cost accounting, ...).
type Extension interface {
	ResolveFieldStart(info ResolveInfo)
	ResolveFieldEnd(resolveID uint64)
}

func fireFieldStart(exts []Extension, info ResolveInfo) {
	for _, e := range exts {
		e.ResolveFieldStart(info)
	}
}

func fireFieldEnd(exts []Extension, resolveID uint64) {
	for _, e := range exts {
		e.ResolveFieldEnd(resolveID)
	}
}
