package domain

// Factory builds installation locations and keeps the ones that validated,
// in creation order.
type Factory struct {
	items []InstallationLocation
}

func NewFactory() *Factory {
	return &Factory{}
}

// Create builds one record. On failure nothing is appended and the
// LocationError is returned so the caller can abort or skip.
func (f *Factory) Create(in LocationInput) (InstallationLocation, error) {
	loc, err := NewInstallationLocation(in)
	if err != nil {
		return InstallationLocation{}, err
	}
	f.items = append(f.items, loc)
	return loc, nil
}

// Items returns a copy of every record created so far.
func (f *Factory) Items() []InstallationLocation {
	out := make([]InstallationLocation, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Factory) Len() int { return len(f.items) }
