package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{name: "defaults", query: "", want: Params{Page: 1, Limit: DefaultLimit}},
		{name: "explicit", query: "page=3&limit=10", want: Params{Page: 3, Limit: 10}},
		{name: "limit_capped", query: "limit=500", want: Params{Page: 1, Limit: MaxLimit}},
		{name: "garbage", query: "page=abc&limit=-2", want: Params{Page: 1, Limit: DefaultLimit}},
		{name: "zero_page", query: "page=0", want: Params{Page: 1, Limit: DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, FromQuery(q))
		})
	}
}

func TestParams_OffsetAndMeta(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, Meta{Page: 3, Limit: 20, Total: 41, TotalPages: 3}, p.Meta(41))
	assert.Equal(t, 0, p.Meta(0).TotalPages)
}
