// Package preview turns attachments into displayable data URIs in the background.
//
// Every request for a key carries a token. A finished decode is stored only if its
// token is still the current one for the key, so results for files that were
// replaced or removed in the meantime are dropped instead of overwriting newer state.
package preview

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/imaging"
	"github.com/kozaktomas/event-report/internal/report"
)

// DecodeFunc converts an attachment into a displayable representation.
type DecodeFunc func(ctx context.Context, att *report.Attachment) (string, error)

// Preview is the state of one key.
type Preview struct {
	URI   string
	Err   error
	Ready bool
}

type entry struct {
	token  string
	att    *report.Attachment
	cancel context.CancelFunc
	done   chan struct{}
	result Preview
}

// Decoder tracks one in-flight or finished preview per key.
type Decoder struct {
	decode DecodeFunc

	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
}

// NewDecoder creates a decoder using DataURI.
func NewDecoder() *Decoder {
	return NewDecoderWithFunc(DataURI)
}

// NewDecoderWithFunc creates a decoder with a custom decode function.
func NewDecoderWithFunc(fn DecodeFunc) *Decoder {
	return &Decoder{
		decode:  fn,
		entries: make(map[string]*entry),
	}
}

// Request starts decoding att for key, superseding any earlier request for the key.
// Requesting the attachment that is already current for the key does nothing.
func (d *Decoder) Request(key string, att *report.Attachment) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[key]; ok {
		if e.att == att {
			return
		}
		e.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{
		token:  uuid.New().String(),
		att:    att,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	d.entries[key] = e

	d.wg.Add(1)
	go d.run(ctx, key, e)
}

func (d *Decoder) run(ctx context.Context, key string, e *entry) {
	defer d.wg.Done()
	defer close(e.done)

	uri, err := d.decode(ctx, e.att)

	d.mu.Lock()
	defer d.mu.Unlock()
	current, ok := d.entries[key]
	if !ok || current.token != e.token {
		// Superseded or released while decoding.
		return
	}
	if err != nil {
		log.Printf("preview %s: %v", key, err)
	}
	current.result = Preview{URI: uri, Err: err, Ready: true}
}

// Get returns the preview for key. Ready is false while decoding is in progress
// or when the key is unknown; callers show a placeholder then.
func (d *Decoder) Get(key string) Preview {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.entries[key]; ok {
		return e.result
	}
	return Preview{}
}

// Wait blocks until the current request for key has finished or ctx is done.
func (d *Decoder) Wait(ctx context.Context, key string) (Preview, error) {
	for {
		d.mu.Lock()
		e, ok := d.entries[key]
		d.mu.Unlock()
		if !ok {
			return Preview{}, fmt.Errorf("no preview requested for %s", key)
		}

		select {
		case <-e.done:
		case <-ctx.Done():
			return Preview{}, ctx.Err()
		}

		// The entry may have been superseded while we waited; retry with the new one.
		if p := d.Get(key); p.Ready {
			return p, nil
		}
	}
}

// Release drops the preview for key and suppresses any pending result.
func (d *Decoder) Release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.entries[key]; ok {
		e.cancel()
		delete(d.entries, key)
	}
}

// Sync requests a preview for every image in keys and releases every other key.
// It is meant to run after each change of the attachment slots.
func (d *Decoder) Sync(keys map[string]*report.Attachment) {
	d.mu.Lock()
	var stale []string
	for key, e := range d.entries {
		if att, ok := keys[key]; !ok || att != e.att || !att.IsImage() {
			stale = append(stale, key)
		}
	}
	d.mu.Unlock()

	for _, key := range stale {
		d.Release(key)
	}
	for key, att := range keys {
		if att.IsImage() {
			d.Request(key, att)
		}
	}
}

// Len returns the number of tracked keys.
func (d *Decoder) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Close releases every preview and waits for running decodes to return.
func (d *Decoder) Close() {
	d.mu.Lock()
	for key, e := range d.entries {
		e.cancel()
		delete(d.entries, key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// DataURI encodes an attachment as a data URI. Images larger than
// constants.PreviewMaxSize are downscaled and re-encoded as JPEG first.
func DataURI(ctx context.Context, att *report.Attachment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, mimeType := att.Data, att.MIMEType
	if att.IsImage() {
		cfg, _, err := imaging.DecodeConfig(att.Data)
		if err != nil {
			return "", err
		}
		if cfg.Width > constants.PreviewMaxSize || cfg.Height > constants.PreviewMaxSize {
			data, err = imaging.ResizeJPEG(att.Data, constants.PreviewMaxSize, 85)
			if err != nil {
				return "", err
			}
			mimeType = "image/jpeg"
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
