package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/imaging"
	"github.com/kozaktomas/event-report/internal/report"
)

func pngAttachment(t *testing.T, name string, w, h int) *report.Attachment {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return report.NewAttachment(name, "image/png", buf.Bytes())
}

func waitReady(t *testing.T, d *Decoder, key string) Preview {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p, err := d.Wait(ctx, key)
	if err != nil {
		t.Fatalf("Wait(%s): %v", key, err)
	}
	return p
}

func TestDataURI_SmallImageUnchanged(t *testing.T) {
	att := pngAttachment(t, "a.png", 10, 10)
	uri, err := DataURI(context.Background(), att)
	if err != nil {
		t.Fatalf("DataURI: %v", err)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(att.Data)
	if uri != want {
		t.Error("small image should be embedded unchanged")
	}
}

func TestDataURI_LargeImageDownscaled(t *testing.T) {
	att := pngAttachment(t, "big.png", constants.PreviewMaxSize+200, 100)
	uri, err := DataURI(context.Background(), att)
	if err != nil {
		t.Fatalf("DataURI: %v", err)
	}
	prefix := "data:image/jpeg;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("expected jpeg data uri, got prefix %q", uri[:30])
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	cfg, _, err := imaging.DecodeConfig(raw)
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != constants.PreviewMaxSize {
		t.Errorf("width = %d, want %d", cfg.Width, constants.PreviewMaxSize)
	}
}

func TestDataURI_NonImage(t *testing.T) {
	att := report.NewAttachment("doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	uri, err := DataURI(context.Background(), att)
	if err != nil {
		t.Fatalf("DataURI: %v", err)
	}
	if !strings.HasPrefix(uri, "data:application/pdf;base64,") {
		t.Errorf("unexpected uri %q", uri)
	}
}

func TestDataURI_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DataURI(ctx, pngAttachment(t, "a.png", 2, 2)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDecoder_RequestAndGet(t *testing.T) {
	d := NewDecoder()
	defer d.Close()

	att := pngAttachment(t, "a.png", 4, 4)
	d.Request("photos/0", att)
	p := waitReady(t, d, "photos/0")
	if !p.Ready || p.Err != nil {
		t.Fatalf("unexpected preview %+v", p)
	}
	if !strings.HasPrefix(p.URI, "data:image/png;base64,") {
		t.Errorf("unexpected uri prefix")
	}
}

func TestDecoder_UnknownKeyNotReady(t *testing.T) {
	d := NewDecoder()
	defer d.Close()
	if p := d.Get("photos/9"); p.Ready {
		t.Error("unknown key should not be ready")
	}
	if _, err := d.Wait(context.Background(), "photos/9"); err == nil {
		t.Error("Wait on unknown key should fail")
	}
}

// blockingDecode returns a decode function whose calls finish only when released.
func blockingDecode() (DecodeFunc, func(name string)) {
	var mu sync.Mutex
	gates := make(map[string]chan struct{})
	gate := func(name string) chan struct{} {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := gates[name]; !ok {
			gates[name] = make(chan struct{})
		}
		return gates[name]
	}
	fn := func(ctx context.Context, att *report.Attachment) (string, error) {
		<-gate(att.Name)
		return "uri:" + att.Name, nil
	}
	return fn, func(name string) { close(gate(name)) }
}

func TestDecoder_StaleResultDropped(t *testing.T) {
	fn, release := blockingDecode()
	d := NewDecoderWithFunc(fn)
	defer d.Close()

	old := report.NewAttachment("old.png", "image/png", []byte{1})
	fresh := report.NewAttachment("new.png", "image/png", []byte{2})

	d.Request("photos/0", old)
	d.Request("photos/0", fresh)

	release("new.png")
	p := waitReady(t, d, "photos/0")
	if p.URI != "uri:new.png" {
		t.Fatalf("URI = %q, want uri:new.png", p.URI)
	}

	// The superseded decode finishes last and must not overwrite the newer result.
	release("old.png")
	d.wg.Wait()
	if got := d.Get("photos/0").URI; got != "uri:new.png" {
		t.Errorf("stale result overwrote preview: %q", got)
	}
}

func TestDecoder_ReleaseSuppressesPendingResult(t *testing.T) {
	fn, release := blockingDecode()
	d := NewDecoderWithFunc(fn)
	defer d.Close()

	d.Request("invitation/0", report.NewAttachment("inv.png", "image/png", []byte{1}))
	d.Release("invitation/0")
	release("inv.png")
	d.wg.Wait()

	if d.Len() != 0 {
		t.Errorf("Len = %d after release, want 0", d.Len())
	}
	if d.Get("invitation/0").Ready {
		t.Error("released key should not become ready")
	}
}

func TestDecoder_SameAttachmentIsNoop(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDecoderWithFunc(func(ctx context.Context, att *report.Attachment) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "uri", nil
	})
	defer d.Close()

	att := report.NewAttachment("a.png", "image/png", []byte{1})
	d.Request("photos/0", att)
	waitReady(t, d, "photos/0")
	d.Request("photos/0", att)
	d.wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("decode called %d times, want 1", calls)
	}
}

func TestDecoder_DecodeError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDecoderWithFunc(func(ctx context.Context, att *report.Attachment) (string, error) {
		return "", boom
	})
	defer d.Close()

	d.Request("photos/0", report.NewAttachment("a.png", "image/png", []byte{1}))
	p := waitReady(t, d, "photos/0")
	if !errors.Is(p.Err, boom) {
		t.Errorf("Err = %v, want boom", p.Err)
	}
}

func TestDecoder_Sync(t *testing.T) {
	d := NewDecoderWithFunc(func(ctx context.Context, att *report.Attachment) (string, error) {
		return "uri:" + att.Name, nil
	})
	defer d.Close()

	a := report.NewAttachment("a.png", "image/png", []byte{1})
	b := report.NewAttachment("b.png", "image/png", []byte{2})
	pdf := report.NewAttachment("att.pdf", "application/pdf", []byte("%PDF"))

	var files report.Files
	files, _ = files.Add(report.SlotPhotos, a, b)
	files, _ = files.Add(report.SlotAttendance, pdf)

	d.Sync(files.Keys())
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (pdf is not previewed)", d.Len())
	}
	waitReady(t, d, "photos/0")
	waitReady(t, d, "photos/1")

	// Removing the first photo shifts b to index 0.
	files, _ = files.Remove(report.SlotPhotos, 0)
	d.Sync(files.Keys())
	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
	if p := waitReady(t, d, "photos/0"); p.URI != "uri:b.png" {
		t.Errorf("photos/0 = %q, want uri:b.png", p.URI)
	}
}

func TestDecoder_CloseReleasesEverything(t *testing.T) {
	d := NewDecoderWithFunc(func(ctx context.Context, att *report.Attachment) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	d.Request("photos/0", report.NewAttachment("a.png", "image/png", []byte{1}))
	d.Request("photos/1", report.NewAttachment("b.png", "image/png", []byte{2}))

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not cancel running decodes")
	}
	if d.Len() != 0 {
		t.Errorf("Len = %d after Close, want 0", d.Len())
	}
}
