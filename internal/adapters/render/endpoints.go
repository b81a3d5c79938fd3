package render

import (
	"context"
	"encoding/json"
	"strconv"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
	perr "tiba/internal/platform/errors"
)

const (
	pathUpload    = "api/upload/"
	pathInfos     = "api/infos/"
	pathDistances = "api/distances/"
)

// Validate asks the backend whether the upload is well formed
func (c *Client) Validate(ctx context.Context, up dataset.Upload) (dataset.ValidationReport, error) {
	var out uploadResponse
	if err := c.postJSON(ctx, pathUpload, nil, &up, &out); err != nil {
		return dataset.ValidationReport{}, err
	}
	return dataset.ValidationReport{
		Success:  out.Success,
		Messages: dataset.SplitMessages(out.Response),
	}, nil
}

// Domain fetches the identifier domain of the upload
func (c *Client) Domain(ctx context.Context, up dataset.Upload) (dataset.Domain, error) {
	var out infosResponse
	if err := c.postJSON(ctx, pathInfos, nil, &up, &out); err != nil {
		return dataset.Domain{}, err
	}
	return dataset.Domain{
		Headers:    out.Headers,
		IDs:        out.IDs,
		Behaviors:  out.Behaviors,
		Categories: out.Categories,
		Modifiers:  out.Modifiers,
	}, nil
}

// Render posts a widget snapshot and returns the artifact path
func (c *Client) Render(ctx context.Context, req widget.RenderRequest) (string, error) {
	var out map[string]any
	up := req.Upload
	if err := c.postJSON(ctx, req.Kind.Endpoint(), req.Fields(), &up, &out); err != nil {
		return "", err
	}
	field := req.Kind.ArtifactField()
	artifact, _ := out[field].(string)
	if artifact == "" {
		return "", perr.Newf(perr.ErrorCodeUnavailable, "render %s returned no %s", req.Kind, field)
	}
	return artifact, nil
}

// Distances compares two groups of transition networks
func (c *Client) Distances(ctx context.Context, q DistanceQuery) (DistanceResult, error) {
	ga, _ := json.Marshal(nonNil(q.GroupA))
	gb, _ := json.Marshal(nonNil(q.GroupB))
	fields := map[string]string{
		"groupA":       string(ga),
		"groupB":       string(gb),
		"distanceAlg":  q.Algorithm,
		"setindices":   strconv.FormatBool(q.SetIndices),
		"random_state": strconv.Itoa(q.RandomState),
		"n_init":       strconv.Itoa(q.NInit),
		"linkage":      q.Linkage,
	}
	var raw distancesResponse
	if err := c.postJSON(ctx, pathDistances, fields, nil, &raw); err != nil {
		return DistanceResult{}, err
	}
	out := DistanceResult{
		ImageURL:  raw.ImageURL,
		Image2URL: raw.Image2URL,
		NodeDict:  raw.NodeDict,
	}
	var err error
	if out.DistMatrix, err = embeddedJSON(raw.DistMatrix, "dist_matrix"); err != nil {
		return DistanceResult{}, err
	}
	if out.Labels, err = embeddedJSON(raw.Labels, "labels"); err != nil {
		return DistanceResult{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, fields map[string]string, up *dataset.Upload, dst any) error {
	resp, err := c.Do(ctx, path, fields, up)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s response", path)
	}
	return nil
}

// embeddedJSON unwraps a field that carries a JSON document inside a string
func embeddedJSON(s, field string) (json.RawMessage, error) {
	if s == "" {
		return nil, nil
	}
	if !json.Valid([]byte(s)) {
		return nil, perr.WithField(perr.JSONErrf("backend sent invalid %s", field), field)
	}
	return json.RawMessage(s), nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
