package curation

import (
	"context"
	"errors"
	"sync"

	"clipbot/types"
)

type fakeMessenger struct {
	mu        sync.Mutex
	texts     []string
	media     []types.Media
	buttons   [][]Button
	answers   []string
	batches   [][]Update
	offsets   []int
	failMedia bool
}

func (f *fakeMessenger) SendText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendMedia(_ context.Context, m types.Media, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMedia {
		return errors.New("bad request: wrong file identifier")
	}
	f.media = append(f.media, m)
	return nil
}

func (f *fakeMessenger) SendButtons(_ context.Context, _ string, b []Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buttons = append(f.buttons, b)
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) Updates(_ context.Context, offset, _ int) ([]Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, offset)
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeMessenger) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

type fakeMedia struct {
	attempts []int
}

func (f *fakeMedia) Next(_ context.Context, seg types.Segment, attempt int) (types.Media, error) {
	f.attempts = append(f.attempts, attempt)
	return types.Media{URL: "https://vid/next.mp4", Type: types.MediaVideo}, nil
}

func (f *fakeMedia) Fallback() (types.Media, error) {
	return types.Media{URL: "assets/fallback/default.jpg", Path: "assets/fallback/default.jpg", Type: types.MediaLocalPhoto}, nil
}

func testSegments(n int) []types.Segment {
	segs := make([]types.Segment, n)
	for i := range segs {
		segs[i] = types.Segment{
			Index:    i,
			Text:     "Texto do segmento",
			Keywords: []string{"ocean"},
			Media:    types.Media{URL: "https://img/orig.jpg", Type: types.MediaPhoto},
		}
	}
	return segs
}
