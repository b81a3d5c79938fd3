package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"tiba/internal/core/dataset"
	"tiba/internal/core/examples"
	"tiba/internal/core/widget"
	perr "tiba/internal/platform/errors"
	phttp "tiba/internal/platform/net/http"
	"tiba/internal/services/api/workspace/domain"
)

type fakeSvc struct {
	upload dataset.Upload
	kind   widget.Kind
	edit   widget.Edit
	err    error
	closed string
}

func (f *fakeSvc) Create(context.Context) (domain.State, error) {
	return domain.State{ID: "w1"}, f.err
}

func (f *fakeSvc) State(_ context.Context, id string) (domain.State, error) {
	if id != "w1" {
		return domain.State{}, perr.NotFoundf("workspace %s not found", id)
	}
	return domain.State{ID: id, Generation: 2}, nil
}

func (f *fakeSvc) Close(_ context.Context, id string) error {
	f.closed = id
	return f.err
}

func (f *fakeSvc) LoadDataset(_ context.Context, id string, up dataset.Upload) (domain.State, error) {
	f.upload = up
	return domain.State{ID: id, DatasetLoading: true}, f.err
}

func (f *fakeSvc) Edit(_ context.Context, _ string, kind widget.Kind, e widget.Edit) (domain.WidgetState, error) {
	f.kind, f.edit = kind, e
	return domain.WidgetState{View: widget.View{Kind: kind, Dirty: true}}, f.err
}

func (f *fakeSvc) Apply(_ context.Context, _ string, kind widget.Kind) (domain.WidgetState, error) {
	f.kind = kind
	return domain.WidgetState{View: widget.View{Kind: kind, Pending: true}}, f.err
}

func (f *fakeSvc) Links(_ context.Context, _ string, kind widget.Kind) (domain.LinksOutput, error) {
	return domain.LinksOutput{Kind: kind, Links: widget.Links{SVG: "media/a.svg"}}, f.err
}

func newMux(f *fakeSvc) stdhttp.Handler {
	m := chi.NewRouter()
	r := phttp.AdaptChi(m)
	r.Route("/workspaces", func(sr phttp.Router) {
		Register(sr, Deps{Svc: f, Catalog: examples.MustLoad(), MaxUpload: 1 << 10})
	})
	return m
}

func do(t *testing.T, h stdhttp.Handler, method, path, ct string, body io.Reader) (int, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env phttp.Envelope
	if rec.Code != stdhttp.StatusNoContent {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code, env
}

func TestCreateStateClose(t *testing.T) {
	f := &fakeSvc{}
	h := newMux(f)

	if code, env := do(t, h, stdhttp.MethodPost, "/workspaces/", "", nil); code != stdhttp.StatusCreated || env.Data == nil {
		t.Fatalf("create = %d %+v", code, env)
	}
	if code, _ := do(t, h, stdhttp.MethodGet, "/workspaces/w1", "", nil); code != stdhttp.StatusOK {
		t.Fatalf("state = %d", code)
	}
	if code, env := do(t, h, stdhttp.MethodGet, "/workspaces/nope", "", nil); code != stdhttp.StatusNotFound || env.Code != perr.ErrorCodeNotFound {
		t.Fatalf("missing state = %d %+v", code, env)
	}
	if code, _ := do(t, h, stdhttp.MethodDelete, "/workspaces/w1", "", nil); code != stdhttp.StatusNoContent || f.closed != "w1" {
		t.Fatalf("close = %d closed=%q", code, f.closed)
	}
}

func TestDataset_Example(t *testing.T) {
	f := &fakeSvc{}
	h := newMux(f)

	code, _ := do(t, h, stdhttp.MethodPost, "/workspaces/w1/dataset", "application/json", strings.NewReader(`{"example":"example2"}`))
	if code != stdhttp.StatusAccepted {
		t.Fatalf("status = %d", code)
	}
	if f.upload.Example != "example2" || f.upload.Name != "Telmatochromis temporalis" {
		t.Fatalf("upload = %+v", f.upload)
	}

	code, env := do(t, h, stdhttp.MethodPost, "/workspaces/w1/dataset", "application/json", strings.NewReader(`{"example":"example9"}`))
	if code != stdhttp.StatusUnprocessableEntity || !strings.Contains(env.Error, "example9") {
		t.Fatalf("unknown example = %d %+v", code, env)
	}

	if code, _ := do(t, h, stdhttp.MethodPost, "/workspaces/w1/dataset", "application/json", strings.NewReader(`{}`)); code != stdhttp.StatusBadRequest {
		t.Fatalf("missing example = %d", code)
	}
}

func multipartBody(t *testing.T, name, filename string, data []byte) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if name != "" {
		_ = mw.WriteField("name", name)
	}
	fw, err := mw.CreateFormFile("upload", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	return mw.FormDataContentType(), &buf
}

func TestDataset_Upload(t *testing.T) {
	f := &fakeSvc{}
	h := newMux(f)

	ct, body := multipartBody(t, "", "my run.csv", []byte("Time,Subject\n1,f1\n"))
	if code, _ := do(t, h, stdhttp.MethodPost, "/workspaces/w1/dataset", ct, body); code != stdhttp.StatusAccepted {
		t.Fatalf("status = %d", code)
	}
	if f.upload.Name != "my run" || f.upload.Filename != "my run.csv" || len(f.upload.File) == 0 {
		t.Fatalf("upload = %+v", f.upload)
	}

	ct, body = multipartBody(t, "Julidochromis", "x.csv", []byte("a"))
	_, _ = do(t, h, stdhttp.MethodPost, "/workspaces/w1/dataset", ct, body)
	if f.upload.Name != "Julidochromis" {
		t.Fatalf("explicit name = %q", f.upload.Name)
	}

	ct, body = multipartBody(t, "", "big.csv", bytes.Repeat([]byte("a"), 4<<10))
	if code, _ := do(t, h, stdhttp.MethodPost, "/workspaces/w1/dataset", ct, body); code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("oversized upload = %d", code)
	}

	ct, body = multipartBody(t, "", "empty.csv", nil)
	if code, _ := do(t, h, stdhttp.MethodPost, "/workspaces/w1/dataset", ct, body); code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("empty upload = %d", code)
	}
}

func TestWidgetRoutes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"edit set", stdhttp.MethodPost, "/workspaces/w1/widgets/transitions/edit", `{"op":"set","param":"color_hue","value":90}`, stdhttp.StatusOK},
		{"edit toggle", stdhttp.MethodPost, "/workspaces/w1/widgets/barplot/edit", `{"op":"toggle","list":"subjects","id":"f1"}`, stdhttp.StatusOK},
		{"edit bad op", stdhttp.MethodPost, "/workspaces/w1/widgets/barplot/edit", `{"op":"drop","list":"subjects"}`, stdhttp.StatusBadRequest},
		{"edit set without param", stdhttp.MethodPost, "/workspaces/w1/widgets/barplot/edit", `{"op":"set","value":1}`, stdhttp.StatusBadRequest},
		{"edit unknown field", stdhttp.MethodPost, "/workspaces/w1/widgets/barplot/edit", `{"op":"set","param":"x","bogus":1}`, stdhttp.StatusBadRequest},
		{"edit unknown kind", stdhttp.MethodPost, "/workspaces/w1/widgets/heatmap/edit", `{"op":"select_all","list":"subjects"}`, stdhttp.StatusUnprocessableEntity},
		{"apply", stdhttp.MethodPost, "/workspaces/w1/widgets/interactions/apply", "", stdhttp.StatusOK},
		{"links", stdhttp.MethodGet, "/workspaces/w1/widgets/timeseries/links", "", stdhttp.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeSvc{}
			var body io.Reader
			ct := ""
			if tc.body != "" {
				body, ct = strings.NewReader(tc.body), "application/json"
			}
			code, env := do(t, newMux(f), tc.method, tc.path, ct, body)
			if code != tc.want {
				t.Fatalf("status = %d want %d (%+v)", code, tc.want, env)
			}
		})
	}
}

func TestEdit_PassesEditThrough(t *testing.T) {
	f := &fakeSvc{}
	body := strings.NewReader(`{"op":"set","param":"color_hue","value":90}`)
	if code, _ := do(t, newMux(f), stdhttp.MethodPost, "/workspaces/w1/widgets/transitions/edit", "application/json", body); code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if f.kind != widget.Transitions || f.edit.Param != "color_hue" || f.edit.Value != 90.0 {
		t.Fatalf("edit = %s %+v", f.kind, f.edit)
	}
}

func TestApply_ConflictMaps409(t *testing.T) {
	f := &fakeSvc{err: perr.Conflictf("nothing to apply")}
	code, env := do(t, newMux(f), stdhttp.MethodPost, "/workspaces/w1/widgets/barplot/apply", "", nil)
	if code != stdhttp.StatusConflict || env.Code != perr.ErrorCodeConflict {
		t.Fatalf("apply = %d %+v", code, env)
	}
}
