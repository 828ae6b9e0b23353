package mapview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LooKaiJun/ShoreSquad/internal/model"
	"github.com/LooKaiJun/ShoreSquad/internal/state"
)

func TestNew_Defaults(t *testing.T) {
	snap := New(nil, Options{}).Snapshot()

	assert.Equal(t, model.Location{Lat: DefaultLat, Lng: DefaultLng}, snap.Center)
	assert.Equal(t, DefaultZoom, snap.Zoom)
	assert.Equal(t, DefaultTileURL, snap.TileURL)
	assert.Empty(t, snap.Markers)
	assert.NotNil(t, snap.Markers)
	assert.Nil(t, snap.User)
}

func TestRenderMarkers_ReplacesAll(t *testing.T) {
	v := New(nil, Options{})

	v.RenderMarkers([]model.Event{
		{ID: "a", Name: "Ocean Beach", Date: "2025-12-15", Lat: 37.7, Lng: -122.5},
		{ID: "b", Name: "Lands End", Date: "2025-12-22", Lat: 37.8, Lng: -122.5},
	})
	require.Len(t, v.Snapshot().Markers, 2)

	v.RenderMarkers([]model.Event{{ID: "b", Name: "Lands End", Lat: 37.8, Lng: -122.5}})
	markers := v.Snapshot().Markers
	require.Len(t, markers, 1)
	assert.Equal(t, "b", markers[0].ID)
	assert.Equal(t, "Lands End", markers[0].Title)

	v.RenderMarkers(nil)
	assert.Empty(t, v.Snapshot().Markers)
}

func TestZoomToEvent(t *testing.T) {
	v := New(nil, Options{})
	v.RenderMarkers([]model.Event{{ID: "a", Name: "Beach", Lat: 10, Lng: 20}})

	assert.False(t, v.ZoomToEvent("missing"))
	assert.Equal(t, DefaultZoom, v.Snapshot().Zoom)

	require.True(t, v.ZoomToEvent("a"))
	snap := v.Snapshot()
	assert.Equal(t, EventZoom, snap.Zoom)
	assert.Equal(t, model.Location{Lat: 10, Lng: 20}, snap.Center)
}

func TestCenterOn_Validation(t *testing.T) {
	v := New(nil, Options{})

	require.ErrorIs(t, v.CenterOn(100, 0, 10), model.ErrInvalidCoordinates)
	require.ErrorIs(t, v.CenterOn(0, 0, 25), model.ErrInvalidZoom)

	err := v.CenterOn(100, 0, -1)
	require.ErrorIs(t, err, model.ErrInvalidCoordinates)
	require.ErrorIs(t, err, model.ErrInvalidZoom)
	assert.Equal(t, DefaultZoom, v.Snapshot().Zoom)

	require.NoError(t, v.CenterOn(1, 2, 3))
	assert.Equal(t, 3, v.Snapshot().Zoom)
}

func TestShowUserLocation_RecordsInState(t *testing.T) {
	st := state.New(nil, nil)
	v := New(st, Options{})

	require.NoError(t, v.ShowUserLocation(40.7, -74.0))

	snap := v.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, UserMarkerTitle, snap.User.Title)
	assert.Equal(t, UserZoom, snap.Zoom)
	assert.Equal(t, &model.Location{Lat: 40.7, Lng: -74.0}, st.UserLocation())
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name    string
		locator Locator
		wantMsg string
		wantErr error
	}{
		{
			name: "denied",
			locator: LocatorFunc(func(context.Context) (model.Location, error) {
				return model.Location{}, model.ErrGeolocationDenied
			}),
			wantMsg: MessageLocationDenied,
			wantErr: model.ErrGeolocationDenied,
		},
		{
			name: "unsupported",
			locator: LocatorFunc(func(context.Context) (model.Location, error) {
				return model.Location{}, model.ErrGeolocationUnavailable
			}),
			wantMsg: MessageLocationUnsupported,
			wantErr: model.ErrGeolocationUnavailable,
		},
		{
			name:    "no locator",
			wantMsg: MessageLocationUnsupported,
			wantErr: model.ErrGeolocationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(nil, Options{})
			before := v.Snapshot()

			_, err := v.Locate(context.Background(), tt.locator)
			require.ErrorIs(t, err, tt.wantErr)

			var locErr *LocateError
			require.True(t, errors.As(err, &locErr))
			assert.Equal(t, tt.wantMsg, locErr.Message())
			assert.Equal(t, before, v.Snapshot())
		})
	}
}

func TestLocate_Success(t *testing.T) {
	v := New(nil, Options{})

	pos, err := v.Locate(context.Background(), LocatorFunc(func(context.Context) (model.Location, error) {
		return model.Location{Lat: 51.5, Lng: -0.12}, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, model.Location{Lat: 51.5, Lng: -0.12}, pos)
	assert.Equal(t, pos, v.Snapshot().Center)
}

func TestLocate_OutOfRangePosition(t *testing.T) {
	st := state.New(nil, nil)
	v := New(st, Options{})
	before := v.Snapshot()

	_, err := v.Locate(context.Background(), LocatorFunc(func(context.Context) (model.Location, error) {
		return model.Location{Lat: 200, Lng: 0}, nil
	}))
	require.ErrorIs(t, err, model.ErrInvalidCoordinates)

	var locErr *LocateError
	assert.False(t, errors.As(err, &locErr), "bad coordinates are not a permission failure")
	assert.Equal(t, before, v.Snapshot())
	assert.Nil(t, st.UserLocation())
}
