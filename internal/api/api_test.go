package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/youruser/pledgeapp/internal/assets"
	"github.com/youruser/pledgeapp/internal/directory"
	"github.com/youruser/pledgeapp/internal/export"
	"github.com/youruser/pledgeapp/internal/media"
	"github.com/youruser/pledgeapp/internal/pledge"
	"github.com/youruser/pledgeapp/internal/poster"
	"github.com/youruser/pledgeapp/internal/submission"
	"github.com/youruser/pledgeapp/internal/templates"
	"github.com/youruser/pledgeapp/internal/wizard"
)

type env struct {
	router *gin.Engine
	store  *submission.MemoryStore
	refs   *media.Refs
}

func setup(t *testing.T) env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := templates.NewRegistry(templates.DefaultFamilies(), directory.DefaultOrganizations())
	if err != nil {
		t.Fatal(err)
	}
	fonts, err := poster.NewFontManager("")
	if err != nil {
		t.Fatal(err)
	}
	renderer := poster.NewRenderer(fonts, assets.NewLoader(t.TempDir(), nil), nil)
	store := submission.NewMemoryStore()
	svc := submission.NewService(store, nil, time.Second, nil)
	refs := media.NewRefs()
	sessions := wizard.NewStore(refs, time.Hour)
	t.Cleanup(sessions.Close)

	r := gin.New()
	NewHandler(Deps{
		Registry:       reg,
		Sessions:       sessions,
		Renderer:       renderer,
		Exporter:       export.New(renderer, export.Options{Width: 108, Supersample: 2}),
		Submissions:    svc,
		PreviewWidth:   120,
		MaxUploadBytes: 1 << 20,
		ShareURL:       "http://localhost:8080/",
		ShareTitle:     "My Flag Pledge",
		ShareText:      "I have taken the pledge.",
		AdminToken:     "secret",
	}).RegisterRoutes(r)
	return env{router: r, store: store, refs: refs}
}

func (e env) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(raw)
		if header == nil {
			header = map[string]string{}
		}
		header["Content-Type"] = "application/json"
	}
	req := httptest.NewRequest(method, path, rdr)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) wizard.View {
	t.Helper()
	var v wizard.View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode view: %v (%s)", err, w.Body.String())
	}
	return v
}

func multipartImage(t *testing.T, field, contentType string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="photo.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes(), mw.FormDataContentType()
}

func pngOf(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	b, err := assets.EncodePNG(imaging.New(w, h, c))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHealthAndDirectory(t *testing.T) {
	e := setup(t)
	if w := e.do(t, http.MethodGet, "/api/health", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("health %d", w.Code)
	}

	w := e.do(t, http.MethodGet, "/api/organizations?q=chennai", nil, nil)
	var list struct {
		Count         int                      `json:"count"`
		Organizations []templates.Organization `json:"organizations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 1 || list.Organizations[0].ID != "4" {
		t.Errorf("search result %+v", list)
	}

	if w := e.do(t, http.MethodGet, "/api/organizations/citizen", nil, nil); w.Code != http.StatusOK {
		t.Errorf("get citizen %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/api/organizations/none", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("get unknown %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/api/pledge", nil, nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), pledge.Fixed.Text) {
		t.Errorf("pledge %d %s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodGet, "/api/share/qr?size=128", nil, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("qr %d %s", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestPledgeFlow(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, "/api/sessions", nil, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create %d", w.Code)
	}
	id := decodeView(t, w).ID
	base := "/api/sessions/" + id

	w = e.do(t, http.MethodPost, base+"/organization", map[string]string{"organization_id": "1"}, nil)
	if w.Code != http.StatusOK || decodeView(t, w).Step != wizard.StepForm {
		t.Fatalf("select org %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, base+"/step", map[string]string{"action": "next"}, nil)
	if w.Code != http.StatusUnprocessableEntity || !strings.Contains(w.Body.String(), wizard.FieldEmail) {
		t.Fatalf("empty form next %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPatch, base+"/form", map[string]string{
		wizard.FieldFullName: "Ram Kumar",
		wizard.FieldEmail:    "ram@example.com",
		wizard.FieldPhone:    "9876543210",
		wizard.FieldClass:    "8",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update form %d %s", w.Code, w.Body.String())
	}

	body, ct := multipartImage(t, "photo", "image/png", pngOf(t, 300, 200, color.NRGBA{R: 200, A: 255}))
	w = e.do(t, http.MethodPost, base+"/photo/upload", body, map[string]string{"Content-Type": ct})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload %d %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if v.Crop == nil || v.Crop.SourceWidth != 300 || v.Crop.Box.Size != 160 {
		t.Fatalf("crop view %+v", v.Crop)
	}
	if w := e.do(t, http.MethodGet, base+"/crop/source", nil, nil); w.Code != http.StatusOK {
		t.Errorf("crop source %d", w.Code)
	}
	w = e.do(t, http.MethodPut, base+"/crop", map[string]float64{"zoom": 2}, nil)
	if w.Code != http.StatusOK || decodeView(t, w).Crop.Box.Size != 80 {
		t.Fatalf("zoom %d %s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodPost, base+"/crop/confirm", nil, nil)
	if w.Code != http.StatusOK || !decodeView(t, w).HasPhoto {
		t.Fatalf("confirm %d %s", w.Code, w.Body.String())
	}
	if e.refs.Len() != 0 {
		t.Errorf("%d source refs leaked", e.refs.Len())
	}
	if w := e.do(t, http.MethodGet, base+"/photo.jpg", nil, nil); w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/jpeg" {
		t.Errorf("photo %d", w.Code)
	}

	w = e.do(t, http.MethodGet, base+"/preview.png?w=120", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preview %d %s", w.Code, w.Body.String())
	}
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 178 {
		t.Errorf("preview bounds %v", img.Bounds())
	}

	for _, want := range []wizard.Step{wizard.StepPreview, wizard.StepReading} {
		w = e.do(t, http.MethodPost, base+"/step", map[string]string{"action": "next"}, nil)
		if w.Code != http.StatusOK || decodeView(t, w).Step != want {
			t.Fatalf("next to %s: %d %s", want, w.Code, w.Body.String())
		}
	}
	w = e.do(t, http.MethodPost, base+"/step", map[string]string{"action": "next"}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("unacknowledged next %d", w.Code)
	}
	points := make([]int, len(pledge.Points))
	for i := range points {
		points[i] = i
	}
	w = e.do(t, http.MethodPost, base+"/pledge", map[string][]int{"points": points}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("acknowledge without key %d", w.Code)
	}
	w = e.do(t, http.MethodPost, base+"/pledge", map[string][]int{"acknowledged": points}, nil)
	if w.Code != http.StatusOK || len(decodeView(t, w).Acknowledged) != len(pledge.Points) {
		t.Fatalf("acknowledge %d %s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodPost, base+"/step", map[string]string{"action": "next"}, nil)
	v = decodeView(t, w)
	if w.Code != http.StatusOK || v.Step != wizard.StepSuccess || v.SubmissionID == "" {
		t.Fatalf("success %d %+v", w.Code, v)
	}

	recs, _ := e.store.List(context.Background())
	if len(recs) != 1 || recs[0].OrganizationName != "Delhi Public School" || recs[0].Phone != "+91 9876543210" || recs[0].PhotoStatus != "Uploaded" {
		t.Fatalf("stored %+v", recs)
	}

	w = e.do(t, http.MethodGet, base+"/poster/download", nil, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("download %d %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Pledge_Ram_Kumar.png") {
		t.Errorf("content disposition %q", cd)
	}
	img, err = png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 216 || img.Bounds().Dy() != 320 {
		t.Errorf("export bounds %v", img.Bounds())
	}
	recs, _ = e.store.List(context.Background())
	if !recs[0].PosterDownloaded {
		t.Error("download not logged")
	}

	w = e.do(t, http.MethodPost, base+"/poster/share", nil, map[string]string{"X-Share-Files": "1"})
	var shared struct {
		Outcome string `json:"outcome"`
		Text    string `json:"text"`
		Files   []struct {
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &shared); err != nil {
		t.Fatalf("share body: %v", err)
	}
	if shared.Outcome != "shared" || len(shared.Files) != 1 || !strings.HasSuffix(shared.Text, "http://localhost:8080/") {
		t.Errorf("share %+v", shared)
	}
	w = e.do(t, http.MethodPost, base+"/poster/share", nil, nil)
	if w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("share fallback content type %q", w.Header().Get("Content-Type"))
	}

	w = e.do(t, http.MethodPost, base+"/step", map[string]string{"action": "next"}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("next past success %d", w.Code)
	}
	w = e.do(t, http.MethodPost, base+"/step", map[string]string{"action": "goto", "step": "home"}, nil)
	if v := decodeView(t, w); v.Step != wizard.StepHome || v.HasPhoto || v.OrganizationID != "" {
		t.Errorf("start over %+v", v)
	}
	recs, _ = e.store.List(context.Background())
	if len(recs) != 1 {
		t.Errorf("%d submissions stored, want exactly 1", len(recs))
	}
}

func TestPhotoErrors(t *testing.T) {
	e := setup(t)
	id := decodeView(t, e.do(t, http.MethodPost, "/api/sessions", nil, nil)).ID
	base := "/api/sessions/" + id

	body, ct := multipartImage(t, "photo", "text/plain", []byte("hello"))
	if w := e.do(t, http.MethodPost, base+"/photo/upload", body, map[string]string{"Content-Type": ct}); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("text upload %d", w.Code)
	}

	big := bytes.Repeat([]byte{0x89}, 2<<20)
	body, ct = multipartImage(t, "photo", "image/png", big)
	w := e.do(t, http.MethodPost, base+"/photo/upload", body, map[string]string{"Content-Type": ct})
	if w.Code != http.StatusRequestEntityTooLarge || !strings.Contains(w.Body.String(), "less than 10MB") {
		t.Errorf("big upload %d %s", w.Code, w.Body.String())
	}

	if w := e.do(t, http.MethodPost, base+"/crop/confirm", nil, nil); w.Code != http.StatusConflict {
		t.Errorf("confirm without crop %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, base+"/preview.png", nil, nil); w.Code != http.StatusConflict {
		t.Errorf("preview without org %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/api/sessions/missing", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("missing session %d", w.Code)
	}
}

func TestCameraCapture(t *testing.T) {
	e := setup(t)
	id := decodeView(t, e.do(t, http.MethodPost, "/api/sessions", nil, nil)).ID
	base := "/api/sessions/" + id

	frame := imaging.New(40, 20, color.NRGBA{R: 255, A: 255})
	for y := 0; y < 20; y++ {
		for x := 20; x < 40; x++ {
			frame.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	data, err := assets.EncodePNG(frame)
	if err != nil {
		t.Fatal(err)
	}
	body, ct := multipartImage(t, "frame", "image/png", data)
	w := e.do(t, http.MethodPost, base+"/photo/camera", body, map[string]string{"Content-Type": ct})
	if w.Code != http.StatusCreated {
		t.Fatalf("capture %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodGet, base+"/crop/source", nil, nil)
	if w.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("capture source type %q", w.Header().Get("Content-Type"))
	}
	src, err := imaging.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	r, _, b, _ := src.At(2, 10).RGBA()
	if b>>8 < 200 || r>>8 > 60 {
		t.Errorf("captured frame not mirrored: left pixel r=%d b=%d", r>>8, b>>8)
	}

	if w := e.do(t, http.MethodDelete, base+"/crop", nil, nil); w.Code != http.StatusOK || decodeView(t, w).Crop != nil {
		t.Errorf("cancel crop %d", w.Code)
	}
	if e.refs.Len() != 0 {
		t.Errorf("%d refs after cancel", e.refs.Len())
	}
}

func TestAdminExport(t *testing.T) {
	e := setup(t)
	if w := e.do(t, http.MethodGet, "/api/admin/submissions.csv", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token %d", w.Code)
	}
	w := e.do(t, http.MethodGet, "/api/admin/submissions.csv", nil, map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "Submission ID,") {
		t.Errorf("csv %d %q", w.Code, w.Body.String())
	}
}

func TestDeleteSession(t *testing.T) {
	e := setup(t)
	id := decodeView(t, e.do(t, http.MethodPost, "/api/sessions", nil, nil)).ID
	if w := e.do(t, http.MethodDelete, "/api/sessions/"+id, nil, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete %d", w.Code)
	}
	if w := e.do(t, http.MethodDelete, "/api/sessions/"+id, nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete %d", w.Code)
	}
}
