package widget

import (
	"encoding/json"

	"tiba/internal/core/dataset"
)

// RenderRequest is an immutable snapshot of a widget at apply time
// Lists is keyed by wire name and already resolved against the mode parameter
type RenderRequest struct {
	ID         string              `json:"id"`
	Workspace  string              `json:"workspace"`
	Kind       Kind                `json:"kind"`
	Generation dataset.Generation  `json:"generation"`
	Seq        uint64              `json:"seq"`
	Upload     dataset.Upload      `json:"upload"`
	Params     map[string]any      `json:"params"`
	Lists      map[string][]string `json:"lists"`
}

// Fields renders the request as backend form fields, the upload part excluded
// lists travel as JSON arrays, scalars as their text form
func (r RenderRequest) Fields() map[string]string {
	out := make(map[string]string, len(r.Params)+len(r.Lists))
	for name, v := range r.Params {
		out[name] = Encode(v)
	}
	for wire, ids := range r.Lists {
		if ids == nil {
			ids = []string{}
		}
		b, _ := json.Marshal(ids)
		out[wire] = string(b)
	}
	return out
}

// Result builds a result correlated with r
func (r RenderRequest) Result(artifact string, err error) Result {
	return Result{Kind: r.Kind, Generation: r.Generation, Seq: r.Seq, Artifact: artifact, Err: err}
}
