package domain

import (
	"errors"
	"testing"
)

var sampleInput = LocationInput{
	Area:          "一条通〜十条通",
	LocationID:    9,
	Name:          "フィール旭川",
	PostalCode:    " 070-0031 ",
	Address:       "北海道旭川市1条通8丁目",
	PhoneNumber:   "0166-25-5443",
	AvailableTime: "※平日午前8時45分から午後7時30分まで土日祝午前10時から午後7時",
	Floor:         "7階国際交流スペース内",
	Latitude:      43.76572279,
	Longitude:     142.3597048,
}

func TestNewInstallationLocation(t *testing.T) {
	loc, err := NewInstallationLocation(sampleInput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loc.Area() != "一条通〜十条通" {
		t.Errorf("area = %q", loc.Area())
	}
	if loc.LocationID() != 9 {
		t.Errorf("location id = %d, want 9", loc.LocationID())
	}
	if loc.Name() != "フィール旭川" {
		t.Errorf("name = %q", loc.Name())
	}
	if loc.PostalCode() != "070-0031" {
		t.Errorf("postal code = %q, want trimmed 070-0031", loc.PostalCode())
	}
	if loc.Address() != "北海道旭川市1条通8丁目" {
		t.Errorf("address = %q", loc.Address())
	}
	if loc.PhoneNumber() != "0166-25-5443" {
		t.Errorf("phone = %q", loc.PhoneNumber())
	}
	if loc.Floor() != "7階国際交流スペース内" {
		t.Errorf("floor = %q", loc.Floor())
	}
	if loc.Latitude() != 43.76572279 || loc.Longitude() != 142.3597048 {
		t.Errorf("coords = (%v, %v)", loc.Latitude(), loc.Longitude())
	}

	in := loc.Input()
	if in.PostalCode != "070-0031" || in.LocationID != 9 {
		t.Errorf("Input() = %+v", in)
	}
}

func TestNewInstallationLocationRejectsInvalid(t *testing.T) {
	bad := sampleInput
	bad.Latitude = 90
	_, err := NewInstallationLocation(bad)
	var le *LocationError
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want LocationError", err)
	}

	bad = sampleInput
	bad.LocationID = 0
	if _, err := NewInstallationLocation(bad); !errors.As(err, &le) {
		t.Fatalf("error = %v, want LocationError", err)
	}
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory()

	loc, err := f.Create(sampleInput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.LocationID() != 9 {
		t.Fatalf("location id = %d, want 9", loc.LocationID())
	}

	bad := sampleInput
	bad.Longitude = 200
	if _, err := f.Create(bad); err == nil {
		t.Fatalf("expected error for invalid longitude")
	}

	second := sampleInput
	second.LocationID = 10
	if _, err := f.Create(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := f.Items()
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].LocationID() != 9 || items[1].LocationID() != 10 {
		t.Fatalf("items out of creation order: %d, %d", items[0].LocationID(), items[1].LocationID())
	}

	// Items must be a copy.
	items[0] = InstallationLocation{}
	if f.Items()[0].LocationID() != 9 {
		t.Fatalf("Items() exposed internal storage")
	}
}
