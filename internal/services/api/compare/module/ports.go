package module

import (
	"context"

	"tiba/internal/adapters/render"
	cmpdom "tiba/internal/services/api/compare/domain"
)

// Ports returns the module ports
func (m *Module) Ports() any { return Provided{Service: m.svc, Worker: m.svc} }

// renderBackend adapts the render client to the compare backend port
type renderBackend struct{ *render.Client }

// NewRenderBackend wraps c as a compare backend
func NewRenderBackend(c *render.Client) cmpdom.Backend { return renderBackend{Client: c} }

// Distances maps a compare query onto the backend distance form
func (b renderBackend) Distances(ctx context.Context, q cmpdom.Query) (cmpdom.Result, error) {
	res, err := b.Client.Distances(ctx, render.DistanceQuery{
		GroupA:      q.GroupA,
		GroupB:      q.GroupB,
		Algorithm:   string(q.Algorithm),
		SetIndices:  q.SetIndices,
		RandomState: q.RandomState,
		NInit:       q.NInit,
		Linkage:     string(q.Linkage),
	})
	if err != nil {
		return cmpdom.Result{}, err
	}
	return cmpdom.Result{
		ImageURL:   res.ImageURL,
		Image2URL:  res.Image2URL,
		DistMatrix: res.DistMatrix,
		NodeDict:   res.NodeDict,
		Labels:     res.Labels,
	}, nil
}
