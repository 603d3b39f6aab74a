package globe

import (
	"testing"

	"dotglobe/internal/geo"
	"dotglobe/internal/land"
	"dotglobe/internal/marker"
)

func TestSharedNotifiesAndVersions(t *testing.T) {
	s := NewShared(nil)
	if len(s.Markers()) != len(marker.Defaults()) {
		t.Fatalf("markers = %d, want defaults", len(s.Markers()))
	}
	if hit := s.Locator().At(5, 5); hit.Land {
		t.Fatal("locator without land reported land")
	}
	var got *land.Land
	cancel := s.OnLand(func(l *land.Land) { got = l })

	sq := geo.Ring{{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 10}}
	l := land.Build([]geo.Feature{{Name: "sq", Polygons: []geo.Polygon{geo.NewPolygon(sq)}}}, 1)
	v0 := s.Version()
	s.SetLand(l)
	if got != l || s.Land() != l {
		t.Fatal("subscriber or getter did not see the new land")
	}
	if s.Version() != v0+1 {
		t.Errorf("version = %d, want %d", s.Version(), v0+1)
	}
	if hit := s.Locator().At(5, 5); !hit.Land || hit.Feature != "sq" {
		t.Errorf("At(5,5) = %+v", hit)
	}

	cancel()
	got = nil
	s.SetLand(nil)
	if got != nil {
		t.Error("cancelled subscriber was called")
	}
	s.SetMarkers([]marker.Marker{{Name: "a"}})
	if len(s.Markers()) != 1 || s.Version() != v0+3 {
		t.Errorf("markers=%d version=%d", len(s.Markers()), s.Version())
	}
}
