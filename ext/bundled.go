package ext

// Bundled are the extensions that ship with luna, by name.
var Bundled = map[string]Factory{
	urlsName: NewURLs,
	ctcpName: NewCTCP,
}

// AddBundled makes every bundled extension available.
func (m *Manager) AddBundled() {
	for name, factory := range Bundled {
		m.Add(name, factory)
	}
}
