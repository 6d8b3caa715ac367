package state

// AccessOwnerGet returns the configured owner, if any.
func (m *Manager) AccessOwnerGet() ([20]byte, bool, error) {
	var owner [20]byte
	ok, err := m.readRLP(hashKey(accessOwnerKeyBytes), &owner)
	return owner, ok, err
}

// AccessOwnerPut stores the owner address.
func (m *Manager) AccessOwnerPut(addr [20]byte) error {
	return m.writeRLP(hashKey(accessOwnerKeyBytes), addr)
}

// AccessAdminGet reports whether the address holds the admin flag.
func (m *Manager) AccessAdminGet(addr [20]byte) (bool, error) {
	var enabled bool
	if _, err := m.readRLP(hashKey(accessAdminPrefix, addr[:]), &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// AccessAdminPut stores the admin flag for the address.
func (m *Manager) AccessAdminPut(addr [20]byte, enabled bool) error {
	return m.writeRLP(hashKey(accessAdminPrefix, addr[:]), enabled)
}
