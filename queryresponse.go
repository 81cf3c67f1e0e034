package gqlcore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/sigilgraph/gqlcore/registry"
)

// QueryResponse is the wire shape of an execution result: `{ path?,
// data, extensions?, cacheControl }`. Incremental responses (driven
// off a DeferList) set Path to the defer's path array; Merge folds one
// into an accumulated primary response.
type QueryResponse struct {
	Path         []interface{}          `json:"path,omitempty"`
	Data         json.RawMessage        `json:"data"`
	Extensions   map[string]interface{} `json:"extensions,omitempty"`
	CacheControl *registry.CacheControl `json:"cacheControl,omitempty"`
}

// Merge patches incremental.Data into r.Data at the node
// incremental.Path addresses, using gjson/sjson's path navigation
// rather than an unmarshal-to-map round-trip, which would scramble key
// order — selection-set order must survive in the response object.
// Per spec.md §9 note 3's recommended algorithm, the target node is
// expected to hold the null placeholder the primary response emitted
// for the deferred field; gjson reads it first so a defer path that
// addresses an existing non-null value is reported rather than
// silently clobbering it. A path that addresses nothing is not
// reported: sjson creates it.
func (r *QueryResponse) Merge(incremental *QueryResponse) error {
	if len(incremental.Path) == 0 {
		r.Data = incremental.Data
	} else {
		path := sjsonPath(incremental.Path)
		existing := gjson.GetBytes(r.Data, path)
		if existing.Exists() && existing.Type != gjson.Null {
			return fmt.Errorf("queryresponse: defer path %v does not address a null placeholder (found %s)", incremental.Path, existing.Type)
		}
		merged, err := sjson.SetRawBytes(r.Data, path, incremental.Data)
		if err != nil {
			return fmt.Errorf("queryresponse: merging incremental response at path %v: %w", incremental.Path, err)
		}
		r.Data = json.RawMessage(merged)
	}

	if incremental.CacheControl != nil {
		if r.CacheControl == nil {
			r.CacheControl = incremental.CacheControl
		} else {
			merged := r.CacheControl.Merge(*incremental.CacheControl)
			r.CacheControl = &merged
		}
	}
	return nil
}

// sjsonPath renders a response path (string name or int index segments,
// as produced by PathNode.ToJSON) into the dotted path syntax
// github.com/tidwall/sjson expects, escaping literal dots/backslashes
// in name segments per sjson's own escaping convention.
func sjsonPath(path []interface{}) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		switch v := seg.(type) {
		case string:
			parts[i] = strings.NewReplacer("\\", "\\\\", ".", "\\.").Replace(v)
		case int:
			parts[i] = strconv.Itoa(v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ".")
}
