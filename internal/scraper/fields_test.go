package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "detail path",
			url:  "https://fem.encar.com/cars/detail/40647630",
			want: "40647630",
		},
		{
			name: "carid query param",
			url:  "https://fem.encar.com/cars/option/x?carid=12345678",
			want: "12345678",
		},
		{
			name: "carid wins over path",
			url:  "https://fem.encar.com/cars/detail/40647630?carid=99999999",
			want: "99999999",
		},
		{
			name: "trailing id before query",
			url:  "https://fem.encar.com/cars/12345678?foo=bar",
			want: "12345678",
		},
		{
			name: "no id",
			url:  "https://fem.encar.com/cars/search",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ListingIDFromURL(tt.url))
		})
	}
}

func TestDetailURL(t *testing.T) {
	assert.Equal(t,
		"https://fem.encar.com/cars/detail/40647630?carid=40647630",
		DetailURL("40647630"))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "with separator", text: "12,345", want: "123450000"},
		{name: "plain", text: "990", want: "9900000"},
		{name: "whitespace", text: " 1,200 ", want: "12000000"},
		{name: "non numeric", text: "상담", want: ""},
		{name: "empty", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePrice(tt.text))
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "two digit prefix", text: "23/05", want: "2023"},
		{name: "bare", text: "19", want: "2019"},
		{name: "too short", text: "9", want: ""},
		{name: "non numeric", text: "년식", want: ""},
		{name: "empty", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseYear(tt.text))
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "123456", digitsOnly("123,456km"))
	assert.Equal(t, "5", digitsOnly("5인승"))
	assert.Equal(t, "", digitsOnly("없음"))
}

func TestFormatDisplacement(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "cc value", text: "1998cc", want: "2.0l. (1998cm³)"},
		{name: "with separator", text: "2,497cc", want: "2.5l. (2497cm³)"},
		{name: "small engine", text: "999cc", want: "1.0l. (999cm³)"},
		{name: "no digits passthrough", text: "전기", want: "전기"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDisplacement(tt.text))
		})
	}
}

func TestJoinConfiguration(t *testing.T) {
	assert.Equal(t, "1.6 디젤", joinConfiguration("1.6", "디젤"))
	assert.Equal(t, "1.6", joinConfiguration("1.6", ""))
	assert.Equal(t, "", joinConfiguration("", ""))
}
