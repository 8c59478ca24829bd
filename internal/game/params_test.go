package game

import (
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{name: "single empty cell", params: Params{Rows: 1, Columns: 1, Mines: 0}},
		{name: "beginner", params: Beginner.Params},
		{name: "all but one mined", params: Params{Rows: 2, Columns: 2, Mines: 3}},
		{name: "mines fill board", params: Params{Rows: 2, Columns: 2, Mines: 4}, wantErr: true},
		{name: "zero rows", params: Params{Rows: 0, Columns: 5, Mines: 1}, wantErr: true},
		{name: "negative columns", params: Params{Rows: 5, Columns: -1, Mines: 1}, wantErr: true},
		{name: "negative mines", params: Params{Rows: 5, Columns: 5, Mines: -1}, wantErr: true},
		{name: "cell count overflows", params: Params{Rows: math.MaxInt/4 + 2, Columns: 4, Mines: 0}, wantErr: true},
		{name: "cell count overflows to negative", params: Params{Rows: math.MaxInt, Columns: math.MaxInt, Mines: 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidParameters))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	e, err := New(Params{Rows: 2, Columns: 2, Mines: 4})
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestNewRejectsOverflowingBoard(t *testing.T) {
	e, err := New(Params{Rows: math.MaxInt/4 + 2, Columns: 4, Mines: 0})
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestNewWithLayoutRejectsBadMines(t *testing.T) {
	_, err := NewWithLayout(3, 3, []Point{{0, 0}, {0, 0}})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = NewWithLayout(3, 3, []Point{{3, 0}})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestLookupPreset(t *testing.T) {
	p, ok := LookupPreset("Expert")
	require.True(t, ok)
	assert.Equal(t, Params{Rows: 16, Columns: 30, Mines: 99}, p.Params)

	custom := Preset{Name: "expert", Params: Params{Rows: 4, Columns: 4, Mines: 2}}
	p, ok = LookupPreset("expert", custom)
	require.True(t, ok)
	assert.Equal(t, custom.Params, p.Params, "extra presets shadow built-ins")

	_, ok = LookupPreset("nightmare")
	assert.False(t, ok)
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Params
		wantErr bool
	}{
		{name: "explicit", query: "rows=3&columns=4&mines=2", want: Params{Rows: 3, Columns: 4, Mines: 2}},
		{name: "preset", query: "preset=intermediate", want: Intermediate.Params},
		{name: "preset wins over explicit", query: "preset=beginner&rows=2", want: Beginner.Params},
		{name: "unknown preset", query: "preset=nope", wantErr: true},
		{name: "missing mines", query: "rows=3&columns=4", wantErr: true},
		{name: "malformed rows", query: "rows=three&columns=4&mines=1", wantErr: true},
		{name: "empty value", query: "rows=&columns=4&mines=1", wantErr: true},
		{name: "too many mines", query: "rows=2&columns=2&mines=4", wantErr: true},
		{name: "rows wrap cell count", query: "rows=4611686018427387905&columns=4&mines=0", wantErr: true},
		{name: "empty query", query: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseQuery(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParameters)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
