package challenge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProber struct {
	visible    bool
	url        string
	clearAfter int // calls to VisibleAny before the widget disappears
	calls      int
}

func (f *fakeProber) VisibleAny(_ []string) (bool, string) {
	f.calls++
	if f.clearAfter > 0 && f.calls > f.clearAfter {
		return false, ""
	}
	if f.visible {
		return true, "iframe[src*='recaptcha']"
	}
	return false, ""
}

func (f *fakeProber) CurrentURL() string {
	return f.url
}

func TestPresent(t *testing.T) {
	tests := []struct {
		name    string
		visible bool
		url     string
		want    bool
	}{
		{name: "clean page", visible: false, url: "https://fem.encar.com/cars/detail/1", want: false},
		{name: "widget visible", visible: true, url: "https://fem.encar.com/cars/detail/1", want: true},
		{name: "captcha url", visible: false, url: "https://fem.encar.com/CAPTCHA/check", want: true},
		{name: "verify url", visible: false, url: "https://fem.encar.com/verify?next=x", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(&fakeProber{visible: tt.visible, url: tt.url}, time.Millisecond)
			assert.Equal(t, tt.want, d.Present())
		})
	}
}

func TestWaitForManualResolutionClears(t *testing.T) {
	prober := &fakeProber{visible: true, url: "https://fem.encar.com/cars/detail/1", clearAfter: 2}
	d := NewDetector(prober, time.Millisecond)

	assert.True(t, d.WaitForManualResolution(context.Background(), time.Second))
}

func TestWaitForManualResolutionTimesOut(t *testing.T) {
	prober := &fakeProber{visible: true, url: "https://fem.encar.com/cars/detail/1"}
	d := NewDetector(prober, time.Millisecond)

	assert.False(t, d.WaitForManualResolution(context.Background(), 10*time.Millisecond))
}

func TestWaitForManualResolutionCancelled(t *testing.T) {
	prober := &fakeProber{visible: true, url: "https://fem.encar.com/cars/detail/1"}
	d := NewDetector(prober, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, d.WaitForManualResolution(ctx, time.Hour))
}
