package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-actiondetect"
	"github.com/swdee/go-actiondetect/action"
	"github.com/swdee/go-actiondetect/render"
	"gocv.io/x/gocv"
)

type fakeDetector struct {
	outputs []actiondetect.RawOutput
	err     error
	classes []int
}

func (f *fakeDetector) Predict(ctx context.Context, frames []gocv.Mat, classes []int) ([]actiondetect.RawOutput, error) {
	f.classes = classes

	if f.err != nil {
		return nil, f.err
	}

	return f.outputs, nil
}

func newRouter(t *testing.T, fake *fakeDetector) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	reg, err := actiondetect.NewLabelRegistry(map[int]string{0: "spike", 1: "block", 2: "receive", 3: "set"})

	if err != nil {
		t.Fatalf("NewLabelRegistry failed: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := NewHandler(action.NewActionDetector(fake, reg), render.DefaultRenderer(), logger)

	return NewRouter(h)
}

// frameRequest builds a multipart request uploading a JPEG test frame
func frameRequest(t *testing.T, path, exclude string) *http.Request {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))

	var jpg bytes.Buffer

	if err := jpeg.Encode(&jpg, img, nil); err != nil {
		t.Fatalf("jpeg Encode failed: %v", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("frame", "frame.jpg")

	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}

	part.Write(jpg.Bytes())

	if exclude != "" {
		w.WriteField("exclude", exclude)
	}

	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req
}

func TestHealth(t *testing.T) {

	r := newRouter(t, &fakeDetector{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var body struct {
		Status string   `json:"status"`
		Labels []string `json:"labels"`
	}

	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if body.Status != "ok" || !reflect.DeepEqual(body.Labels, []string{"spike", "block", "receive", "set"}) {
		t.Errorf("body = %+v", body)
	}
}

func TestDetect(t *testing.T) {

	fake := &fakeDetector{outputs: []actiondetect.RawOutput{{
		Boxes:       [][4]float32{{4, 5, 20, 30}, {1, 1, 9, 9}},
		Confidences: []float32{0.5, 0.75},
		ClassIDs:    []int{0, 0},
	}}}

	r := newRouter(t, fake)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, frameRequest(t, "/api/v1/detect", "receive, set"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200, body %s", rec.Code, rec.Body.String())
	}

	if want := []int{0, 1}; !reflect.DeepEqual(fake.classes, want) {
		t.Errorf("classes = %v; want %v", fake.classes, want)
	}

	var body struct {
		Detections map[string][]struct {
			Name string  `json:"name"`
			Conf float32 `json:"conf"`
		} `json:"detections"`
		Summary []struct {
			Label string `json:"label"`
			Count int    `json:"count"`
		} `json:"summary"`
	}

	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(body.Detections) != 4 {
		t.Errorf("detections has %d labels; want 4", len(body.Detections))
	}

	spikes := body.Detections["spike"]

	if len(spikes) != 2 || spikes[0].Conf != 0.5 || spikes[1].Conf != 0.75 {
		t.Errorf("spike detections = %+v", spikes)
	}

	if len(body.Summary) != 4 || body.Summary[0].Label != "spike" || body.Summary[0].Count != 2 {
		t.Errorf("summary = %+v", body.Summary)
	}
}

func TestDetectErrors(t *testing.T) {

	t.Run("missing frame", func(t *testing.T) {
		r := newRouter(t, &fakeDetector{})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/detect", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d; want 400", rec.Code)
		}
	})

	t.Run("detector failure", func(t *testing.T) {
		r := newRouter(t, &fakeDetector{err: errors.New("inference service down")})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, frameRequest(t, "/api/v1/detect", ""))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d; want 502", rec.Code)
		}
	})
}

func TestRender(t *testing.T) {

	fake := &fakeDetector{outputs: []actiondetect.RawOutput{{
		Boxes:       [][4]float32{{10, 20, 40, 40}},
		Confidences: []float32{0.9},
		ClassIDs:    []int{1},
	}}}

	r := newRouter(t, fake)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, frameRequest(t, "/api/v1/render", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200, body %s", rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q; want image/jpeg", ct)
	}

	img, err := jpeg.Decode(bytes.NewReader(rec.Body.Bytes()))

	if err != nil {
		t.Fatalf("jpeg Decode failed: %v", err)
	}

	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("rendered frame size = %v; want 64x48", b)
	}
}

func TestParseList(t *testing.T) {

	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"receive", []string{"receive"}},
		{" receive , set,,", []string{"receive", "set"}},
	}

	for _, tc := range tests {
		if got := parseList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseList(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}
